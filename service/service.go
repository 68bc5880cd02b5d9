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

	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/repository"
	"github.com/tomoncle/bakery/types"
	"github.com/uptrace/bun"
)

type Service[T any] interface {
	// Get returns a single entity by its identifier with the named relations loaded.
	Get(ctx context.Context, id any, relations ...string) (*T, error)

	// All returns all entities in primary key order.
	All(ctx context.Context, relations ...string) ([]*T, error)

	// List returns entities narrowed and ordered by opts.
	List(ctx context.Context, opts *types.ListOptions) ([]*T, error)

	// First returns the first entity of the ordered listing.
	First(ctx context.Context, opts *types.ListOptions) (*T, error)

	// Exists reports whether an entity with the identifier exists.
	Exists(ctx context.Context, id any) (bool, error)

	// Save inserts one or more new entities.
	Save(ctx context.Context, model ...*T) error

	// Update writes the given columns of an existing entity.
	Update(ctx context.Context, model *T, columns ...string) error

	// Delete removes an entity by its identifier and returns the rows removed.
	Delete(ctx context.Context, id any) (int64, error)

	GetWithTx(ctx context.Context, tx *bun.Tx, id any, relations ...string) (*T, error)

	ExistsWithTx(ctx context.Context, tx *bun.Tx, id any) (bool, error)

	SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error

	UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T, columns ...string) error

	DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) (int64, error)

	// RunInTx runs fn in a transaction committed when fn returns nil.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx *bun.Tx) error) error
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
}

// NewService returns a default Service implementation using the generic
// repository over the pool source hands out.
func NewService[T any](source database.DBProvider) Service[T] {
	return &baseServiceImpl[T]{repo: repository.NewRepository[T](source)}
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any, relations ...string) (*T, error) {
	return s.repo.GetOne(ctx, id, relations...)
}

func (s *baseServiceImpl[T]) All(ctx context.Context, relations ...string) ([]*T, error) {
	return s.repo.GetAll(ctx, relations...)
}

func (s *baseServiceImpl[T]) List(ctx context.Context, opts *types.ListOptions) ([]*T, error) {
	return s.repo.List(ctx, opts)
}

func (s *baseServiceImpl[T]) First(ctx context.Context, opts *types.ListOptions) (*T, error) {
	return s.repo.First(ctx, opts)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, id any) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.repo.Create(ctx, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model *T, columns ...string) error {
	return s.repo.Update(ctx, model, columns...)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	return s.repo.Delete(ctx, id)
}

func (s *baseServiceImpl[T]) GetWithTx(ctx context.Context, tx *bun.Tx, id any, relations ...string) (*T, error) {
	return s.repo.GetOneWithTx(ctx, tx, id, relations...)
}

func (s *baseServiceImpl[T]) ExistsWithTx(ctx context.Context, tx *bun.Tx, id any) (bool, error) {
	return s.repo.ExistsWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) SaveWithTx(ctx context.Context, tx *bun.Tx, model ...*T) error {
	return s.repo.CreateWithTx(ctx, tx, model...)
}

func (s *baseServiceImpl[T]) UpdateWithTx(ctx context.Context, tx *bun.Tx, model *T, columns ...string) error {
	return s.repo.UpdateWithTx(ctx, tx, model, columns...)
}

func (s *baseServiceImpl[T]) DeleteWithTx(ctx context.Context, tx *bun.Tx, id any) (int64, error) {
	return s.repo.DeleteWithTx(ctx, tx, id)
}

func (s *baseServiceImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *bun.Tx) error) error {
	db := s.repo.DB()
	if db == nil {
		return repository.ErrNotConnected
	}
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &tx)
	})
}
