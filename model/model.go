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

package model

import (
	"context"
	"time"

	"github.com/tomoncle/bakery/database"
	"github.com/uptrace/bun"
)

// Timestamps holds the audit columns shared by every table.
type Timestamps struct {
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// touch stamps created_at on insert and updated_at on every write.
func (t *Timestamps) touch(query bun.Query) {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now
	case *bun.UpdateQuery:
		t.UpdatedAt = now
	}
}

// Table creation order; referenced tables first.
const (
	bakeryPriority    = 10
	bakedGoodPriority = 20
)

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Bakery)(nil), bakeryPriority))
	database.RegisteredModel(database.NewModelAdapter((*BakedGood)(nil), bakedGoodPriority))
}

// Registry returns a fresh registry holding the bakery models, for callers
// that do not use the default one.
func Registry() database.ModelRegistry {
	registry := database.NewModelRegistry()
	registry.Register(database.NewModelAdapter((*Bakery)(nil), bakeryPriority))
	registry.Register(database.NewModelAdapter((*BakedGood)(nil), bakedGoodPriority))
	return registry
}

var (
	_ bun.BeforeAppendModelHook = (*Bakery)(nil)
	_ bun.BeforeAppendModelHook = (*BakedGood)(nil)
)

func (b *Bakery) BeforeAppendModel(_ context.Context, query bun.Query) error {
	b.touch(query)
	return nil
}

func (g *BakedGood) BeforeAppendModel(_ context.Context, query bun.Query) error {
	g.touch(query)
	return nil
}
