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
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/model"
	"github.com/tomoncle/bakery/types"
	"github.com/uptrace/bun"
)

// decimalPrice accepts plain decimals such as "2", "2.75", ".5" and "5.",
// with a leading minus only so negatives get their own message.
var decimalPrice = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// BakedGoodInput is the raw create form. Values stay strings until they
// pass validation so each field can be reported on its own.
type BakedGoodInput struct {
	Name     string `form:"name" validate:"required,notblank,max=255"`
	Price    string `form:"price" validate:"required"`
	BakeryID string `form:"bakery_id" validate:"required,number"`
}

// ToModel validates the input and converts it to an unsaved BakedGood.
func (in BakedGoodInput) ToModel(v *validator.Validate) (*model.BakedGood, error) {
	fields := map[string]string{}
	if err := v.Struct(in); err != nil {
		fe, err := fieldErrors(err, "")
		if err != nil {
			return nil, err
		}
		fields = fe
	}

	good := &model.BakedGood{Name: in.Name}
	if _, bad := fields["price"]; !bad {
		price, err := strconv.ParseFloat(in.Price, 64)
		switch {
		case err != nil, !decimalPrice.MatchString(in.Price):
			fields["price"] = "must be a number"
		case price < 0:
			fields["price"] = "must not be negative"
		default:
			good.Price = price
		}
	}
	if _, bad := fields["bakery_id"]; !bad {
		id, err := strconv.ParseInt(in.BakeryID, 10, 64)
		switch {
		case err != nil:
			fields["bakery_id"] = "is invalid"
		case id <= 0:
			fields["bakery_id"] = "must be a positive integer"
		default:
			good.BakeryID = id
		}
	}

	if len(fields) > 0 {
		return nil, newValidationError(fields)
	}
	return good, nil
}

var byPriceDesc = []types.Order{types.Desc("price"), types.Asc("id")}

// BakedGoodService covers listing, price ranking, creation and deletion of
// baked goods.
type BakedGoodService struct {
	goods    Service[model.BakedGood]
	bakeries Service[model.Bakery]
	validate *validator.Validate
}

func NewBakedGoodService(source database.DBProvider, v *validator.Validate) *BakedGoodService {
	if v == nil {
		v = NewValidator()
	}
	return &BakedGoodService{
		goods:    NewService[model.BakedGood](source),
		bakeries: NewService[model.Bakery](source),
		validate: v,
	}
}

// List returns every baked good in id order.
func (s *BakedGoodService) List(ctx context.Context) ([]*model.BakedGood, error) {
	return s.goods.All(ctx)
}

// ByPrice returns every baked good, most expensive first, ties by id.
func (s *BakedGoodService) ByPrice(ctx context.Context) ([]*model.BakedGood, error) {
	return s.goods.List(ctx, types.NewListOptions(byPriceDesc...))
}

// MostExpensive returns the head of ByPrice or ErrBakedGoodNotFound when
// there are no goods.
func (s *BakedGoodService) MostExpensive(ctx context.Context) (*model.BakedGood, error) {
	good, err := s.goods.First(ctx, types.NewListOptions(byPriceDesc...))
	if err != nil {
		return nil, notFound(err, ErrBakedGoodNotFound)
	}
	return good, nil
}

// Get returns the baked good or ErrBakedGoodNotFound.
func (s *BakedGoodService) Get(ctx context.Context, id int64) (*model.BakedGood, error) {
	if id <= 0 {
		return nil, ErrBakedGoodNotFound
	}
	good, err := s.goods.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrBakedGoodNotFound)
	}
	return good, nil
}

// Create validates the input and inserts the good after confirming its
// bakery exists, all in one transaction.
func (s *BakedGoodService) Create(ctx context.Context, in BakedGoodInput) (*model.BakedGood, error) {
	good, err := in.ToModel(s.validate)
	if err != nil {
		return nil, err
	}

	err = s.goods.RunInTx(ctx, func(ctx context.Context, tx *bun.Tx) error {
		ok, err := s.bakeries.ExistsWithTx(ctx, tx, good.BakeryID)
		if err != nil {
			return err
		}
		if !ok {
			return newValidationError(map[string]string{"bakery_id": "bakery does not exist"})
		}
		return classify(s.goods.SaveWithTx(ctx, tx, good))
	})
	if err != nil {
		return nil, err
	}
	return good, nil
}

// Delete removes the baked good or returns ErrBakedGoodNotFound.
func (s *BakedGoodService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrBakedGoodNotFound
	}
	return s.goods.RunInTx(ctx, func(ctx context.Context, tx *bun.Tx) error {
		n, err := s.goods.DeleteWithTx(ctx, tx, id)
		if err != nil {
			return classify(err)
		}
		if n == 0 {
			return ErrBakedGoodNotFound
		}
		return nil
	})
}
