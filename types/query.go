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

package types

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type Direction string

const (
	ASC  Direction = "ASC"
	DESC Direction = "DESC"
)

// Order is a single ORDER BY term. Column is quoted as an identifier when
// applied, so it never carries raw SQL.
type Order struct {
	Column    string
	Direction Direction
}

func Asc(column string) Order  { return Order{Column: column, Direction: ASC} }
func Desc(column string) Order { return Order{Column: column, Direction: DESC} }

func (o Order) String() string {
	return o.Column + " " + string(o.direction())
}

func (o Order) direction() Direction {
	if strings.EqualFold(string(o.Direction), string(DESC)) {
		return DESC
	}
	return ASC
}

// Validate rejects columns that are not plain (optionally table-qualified)
// identifiers.
func (o Order) Validate() error {
	if !identPattern.MatchString(o.Column) {
		return fmt.Errorf("invalid order column: %q", o.Column)
	}
	return nil
}

// Expr returns the bun expression for the term; the column is bound with
// bun.Ident by the caller.
func (o Order) Expr() string {
	return "? " + string(o.direction())
}

// ListOptions narrows a repository listing. The zero value selects every
// row in primary key order.
type ListOptions struct {
	Orders    []Order
	Relations []string
	Limit     int
}

// NewListOptions returns options ordered by orders.
func NewListOptions(orders ...Order) *ListOptions {
	return &ListOptions{Orders: orders}
}

// WithRelations adds bun relations to load alongside each row.
func (o *ListOptions) WithRelations(relations ...string) *ListOptions {
	o.Relations = append(o.Relations, relations...)
	return o
}
