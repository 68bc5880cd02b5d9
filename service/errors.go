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
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomoncle/bakery/database"
)

var (
	ErrBakeryNotFound    = errors.New("bakery not found")
	ErrBakedGoodNotFound = errors.New("baked good not found")
)

// ValidationError reports rejected input. Fields maps a form field to the
// reason it was rejected and may be empty.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}

func newValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Message: "Invalid input.", Fields: fields}
}

// ConstraintError is a write the database rejected on integrity grounds.
type ConstraintError struct {
	Kind database.SQLError
	Err  error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// classify turns integrity violations into a ConstraintError and leaves
// everything else untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if is, kind := database.IsSqlError(err); is && kind.IsConstraintViolation() {
		return &ConstraintError{Kind: kind, Err: err}
	}
	return err
}

// notFound maps a missing row to sentinel and passes other errors through.
func notFound(err, sentinel error) error {
	if is, kind := database.IsSqlError(err); is && kind == database.NoRowsErr {
		return sentinel
	}
	return err
}
