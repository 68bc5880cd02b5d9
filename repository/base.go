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
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

// ErrNotConnected is returned while the provider has no pool, such as in
// the middle of a reconnect.
var ErrNotConnected = errors.New("database not connected")

type baseRepositoryImpl[T any] struct {
	source database.DBProvider
}

// NewRepository returns a generic repository that resolves its Bun DB from
// source on every call.
func NewRepository[T any](source database.DBProvider) Repository[T] {
	return &baseRepositoryImpl[T]{source: source}
}

func (r *baseRepositoryImpl[T]) DB() *bun.DB { return r.source.GetDB() }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.DB().Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.DB().NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.DB().NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.DB().NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.DB().NewDelete() }

// idb picks the transaction when one is given, the current pool otherwise.
func (r *baseRepositoryImpl[T]) idb(tx *bun.Tx) (bun.IDB, error) {
	if tx != nil {
		return *tx, nil
	}
	db := r.DB()
	if db == nil {
		return nil, ErrNotConnected
	}
	return db, nil
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any, relations ...string) (*T, error) {
	return r.GetOneWithTx(ctx, nil, id, relations...)
}

func (r *baseRepositoryImpl[T]) getOne(ctx context.Context, db bun.IDB, id any, relations ...string) (*T, error) {
	var entity T
	query := withRelations(db.NewSelect().Model(&entity).Where("?TableAlias.id = ?", id), relations)
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, relations ...string) ([]*T, error) {
	return r.List(ctx, &types.ListOptions{Relations: relations})
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, opts *types.ListOptions) ([]*T, error) {
	db, err := r.idb(nil)
	if err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	query, err := r.listQuery(db.NewSelect().Model(&entities), opts)
	if err != nil {
		return nil, err
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

// First returns the first row of the ordered listing, or sql.ErrNoRows.
func (r *baseRepositoryImpl[T]) First(ctx context.Context, opts *types.ListOptions) (*T, error) {
	db, err := r.idb(nil)
	if err != nil {
		return nil, err
	}
	var entity T
	query, err := r.listQuery(db.NewSelect().Model(&entity), opts)
	if err != nil {
		return nil, err
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) listQuery(query *bun.SelectQuery, opts *types.ListOptions) (*bun.SelectQuery, error) {
	if opts == nil {
		opts = &types.ListOptions{}
	}
	query = withRelations(query, opts.Relations)
	for _, order := range opts.Orders {
		if err := order.Validate(); err != nil {
			return nil, err
		}
		query = query.OrderExpr(order.Expr(), bun.Ident(order.Column))
	}
	if len(opts.Orders) == 0 {
		query = query.OrderExpr("?TableAlias.id ASC")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	return query, nil
}

// withRelations loads each relation with its rows in primary key order.
func withRelations(query *bun.SelectQuery, relations []string) *bun.SelectQuery {
	for _, relation := range relations {
		query = query.Relation(relation, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.id ASC")
		})
	}
	return query
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, id any) (bool, error) {
	return r.ExistsWithTx(ctx, nil, id)
}

func (r *baseRepositoryImpl[T]) exists(ctx context.Context, db bun.IDB, id any) (bool, error) {
	return db.NewSelect().Model((*T)(nil)).Where("?TableAlias.id = ?", id).Exists(ctx)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, nil, entity...)
}

// create fills generated columns back into the entity: through RETURNING
// where the dialect supports it, last insert id otherwise.
func (r *baseRepositoryImpl[T]) create(ctx context.Context, db bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return fmt.Errorf("no entities to create")
	}
	var query *bun.InsertQuery
	if len(entity) == 1 {
		query = db.NewInsert().Model(entity[0])
	} else {
		entities := make([]*T, len(entity))
		copy(entities, entity)
		query = db.NewInsert().Model(&entities)
	}
	if db.Dialect().Features().Has(feature.InsertReturning) {
		query = query.Returning("*")
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T, columns ...string) error {
	return r.UpdateWithTx(ctx, nil, entity, columns...)
}

// update writes the named columns only, or every column when none are given.
func (r *baseRepositoryImpl[T]) update(ctx context.Context, db bun.IDB, entity *T, columns ...string) error {
	query := db.NewUpdate().Model(entity).WherePK()
	if len(columns) > 0 {
		query = query.Column(columns...)
	}
	_, err := query.Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	return r.DeleteWithTx(ctx, nil, id)
}

func (r *baseRepositoryImpl[T]) delete(ctx context.Context, db bun.IDB, id any) (int64, error) {
	res, err := db.NewDelete().Model((*T)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *baseRepositoryImpl[T]) GetOneWithTx(ctx context.Context, tx *bun.Tx, id any, relations ...string) (*T, error) {
	db, err := r.idb(tx)
	if err != nil {
		return nil, err
	}
	return r.getOne(ctx, db, id, relations...)
}

func (r *baseRepositoryImpl[T]) ExistsWithTx(ctx context.Context, tx *bun.Tx, id any) (bool, error) {
	db, err := r.idb(tx)
	if err != nil {
		return false, err
	}
	return r.exists(ctx, db, id)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx *bun.Tx, entity ...*T) error {
	db, err := r.idb(tx)
	if err != nil {
		return err
	}
	return r.create(ctx, db, entity...)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, entity *T, columns ...string) error {
	db, err := r.idb(tx)
	if err != nil {
		return err
	}
	return r.update(ctx, db, entity, columns...)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) (int64, error) {
	db, err := r.idb(tx)
	if err != nil {
		return 0, err
	}
	return r.delete(ctx, db, id)
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
