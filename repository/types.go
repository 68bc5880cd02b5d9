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

package repository

import (
	"context"

	"github.com/tomoncle/bakery/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any, relations ...string) (*T, error)

	GetAll(ctx context.Context, relations ...string) ([]*T, error)

	List(ctx context.Context, opts *types.ListOptions) ([]*T, error)

	First(ctx context.Context, opts *types.ListOptions) (*T, error)

	Exists(ctx context.Context, id any) (bool, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T, columns ...string) error

	Delete(ctx context.Context, id any) (int64, error)
}

// TransactionRepository defines operations executed within a transaction.
type TransactionRepository[T any] interface {
	GetOneWithTx(ctx context.Context, tx *bun.Tx, id any, relations ...string) (*T, error)
	ExistsWithTx(ctx context.Context, tx *bun.Tx, id any) (bool, error)
	CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T, columns ...string) error
	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) (int64, error)
}

// Repository combines CRUD and transactional operations and exposes Bun
// query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	TransactionRepository[T]
	DB() *bun.DB
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
