/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package service

import (
	"context"
	"net/url"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/model"
	"github.com/tomoncle/bakery/types"
	"github.com/uptrace/bun"
)

const relationBakedGoods = "BakedGoods"

// mutableBakeryFields is the set of form fields PATCH may change.
var mutableBakeryFields = map[string]string{
	"name": "name",
}

// BakeryPatch is a validated partial update. Nil fields are left alone.
type BakeryPatch struct {
	Name *string
}

func (p BakeryPatch) IsEmpty() bool {
	return p.Name == nil
}

// Apply copies the set fields onto b and returns the columns to write.
func (p BakeryPatch) Apply(b *model.Bakery) []string {
	var columns []string
	if p.Name != nil {
		b.Name = *p.Name
		columns = append(columns, mutableBakeryFields["name"])
	}
	if len(columns) > 0 {
		columns = append(columns, "updated_at")
	}
	return columns
}

// ParseBakeryPatch checks form values against the allow-list and validates
// each present field. The first value of a repeated field wins.
func ParseBakeryPatch(v *validator.Validate, values url.Values) (BakeryPatch, error) {
	var patch BakeryPatch

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if _, ok := mutableBakeryFields[key]; !ok {
			return patch, &ValidationError{Message: "Field not allowed: " + key + "."}
		}
	}

	if vals, ok := values["name"]; ok {
		name := ""
		if len(vals) > 0 {
			name = vals[0]
		}
		if err := v.Var(name, "required,notblank,max=255"); err != nil {
			fields, err := fieldErrors(err, "name")
			if err != nil {
				return patch, err
			}
			return patch, newValidationError(fields)
		}
		patch.Name = &name
	}
	return patch, nil
}

// BakeryService reads bakeries with their goods and applies allow-listed
// updates. Bakeries are never created or deleted over HTTP.
type BakeryService struct {
	bakeries Service[model.Bakery]
	validate *validator.Validate
}

func NewBakeryService(source database.DBProvider, v *validator.Validate) *BakeryService {
	if v == nil {
		v = NewValidator()
	}
	return &BakeryService{
		bakeries: NewService[model.Bakery](source),
		validate: v,
	}
}

// List returns every bakery in id order with its goods.
func (s *BakeryService) List(ctx context.Context) ([]*model.Bakery, error) {
	return s.bakeries.List(ctx, types.NewListOptions().WithRelations(relationBakedGoods))
}

// Get returns the bakery with its goods or ErrBakeryNotFound.
func (s *BakeryService) Get(ctx context.Context, id int64) (*model.Bakery, error) {
	if id <= 0 {
		return nil, ErrBakeryNotFound
	}
	bakery, err := s.bakeries.Get(ctx, id, relationBakedGoods)
	if err != nil {
		return nil, notFound(err, ErrBakeryNotFound)
	}
	return bakery, nil
}

// Update applies the form values to the bakery in one transaction and
// returns the stored result. An empty form changes nothing.
func (s *BakeryService) Update(ctx context.Context, id int64, values url.Values) (*model.Bakery, error) {
	patch, err := ParseBakeryPatch(s.validate, values)
	if err != nil {
		return nil, err
	}
	if id <= 0 {
		return nil, ErrBakeryNotFound
	}

	err = s.bakeries.RunInTx(ctx, func(ctx context.Context, tx *bun.Tx) error {
		current, err := s.bakeries.GetWithTx(ctx, tx, id)
		if err != nil {
			return notFound(err, ErrBakeryNotFound)
		}
		columns := patch.Apply(current)
		if len(columns) == 0 {
			return nil
		}
		return classify(s.bakeries.UpdateWithTx(ctx, tx, current, columns...))
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}
