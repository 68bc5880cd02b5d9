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
	"github.com/tomoncle/bakery/database"
	"github.com/uptrace/bun"
)

// BakedGood is a priced item sold by exactly one bakery.
type BakedGood struct {
	bun.BaseModel `bun:"table:baked_goods,alias:bg"`

	ID       int64   `bun:"id,pk,autoincrement" json:"id"`
	Name     string  `bun:"name,notnull" json:"name"`
	Price    float64 `bun:"price,notnull" json:"price"`
	BakeryID int64   `bun:"bakery_id,notnull" json:"bakery_id"`
	Timestamps
}

// ForeignKeys ties baked_goods.bakery_id to bakeries.id; removing a bakery
// removes its goods.
func (*BakedGood) ForeignKeys() []database.ForeignKeyConstraint {
	return []database.ForeignKeyConstraint{
		{
			Table:           "baked_goods",
			Column:          "bakery_id",
			ReferenceTable:  "bakeries",
			ReferenceColumn: "id",
			OnDelete:        "CASCADE",
			ConstraintName:  "fk_baked_goods_bakery_id",
		},
	}
}
