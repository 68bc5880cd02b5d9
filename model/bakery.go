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
	"encoding/json"

	"github.com/uptrace/bun"
)

// Bakery is a shop that offers baked goods.
type Bakery struct {
	bun.BaseModel `bun:"table:bakeries,alias:b"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`
	Timestamps

	BakedGoods []*BakedGood `bun:"rel:has-many,join:id=bakery_id" json:"baked_goods"`
}

// MarshalJSON always renders baked_goods, as an empty array when the bakery
// has none.
func (b Bakery) MarshalJSON() ([]byte, error) {
	type plain Bakery
	if b.BakedGoods == nil {
		b.BakedGoods = []*BakedGood{}
	}
	return json.Marshal(plain(b))
}
