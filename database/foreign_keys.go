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

package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

var validReferentialActions = []string{"CASCADE", "RESTRICT", "SET NULL", "NO ACTION"}

// ForeignKeyConstraint describes a foreign key relationship between tables.
type ForeignKeyConstraint struct {
	Table           string
	Column          string
	ReferenceTable  string
	ReferenceColumn string
	OnDelete        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	OnUpdate        string // CASCADE, RESTRICT, SET NULL, NO ACTION
	ConstraintName  string
}

// GenerateConstraintName returns the explicit name or a derived name.
func (fk *ForeignKeyConstraint) GenerateConstraintName() string {
	if fk.ConstraintName != "" {
		return fk.ConstraintName
	}
	return fmt.Sprintf("fk_%s_%s", fk.Table, fk.Column)
}

// GenerateSQL returns the ALTER TABLE statement to add the constraint.
func (fk *ForeignKeyConstraint) GenerateSQL() string {
	return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY %s",
		fk.Table, fk.GenerateConstraintName(), fk.referenceClause())
}

// InlineClause returns the part of a CREATE TABLE foreign key definition
// that follows the FOREIGN KEY keyword.
func (fk *ForeignKeyConstraint) InlineClause() string {
	return fk.referenceClause()
}

func (fk *ForeignKeyConstraint) referenceClause() string {
	clause := fmt.Sprintf("(%s) REFERENCES %s (%s)", fk.Column, fk.ReferenceTable, fk.ReferenceColumn)
	if fk.OnDelete != "" {
		clause += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		clause += " ON UPDATE " + strings.ToUpper(fk.OnUpdate)
	}
	return clause
}

// ForeignKeyManager manages adding and validating foreign key constraints.
type ForeignKeyManager struct {
	constraints []ForeignKeyConstraint
	logger      Logger
}

// NewForeignKeyManager creates a manager with the constraints declared by
// the models in registry.
func NewForeignKeyManager(logger Logger, registry ModelRegistry) *ForeignKeyManager {
	return &ForeignKeyManager{
		constraints: modelForeignKeyConstraints(registry),
		logger:      logger,
	}
}

func modelForeignKeyConstraints(registry ModelRegistry) []ForeignKeyConstraint {
	if registry == nil {
		return nil
	}
	var constraints []ForeignKeyConstraint
	for _, model := range registry.Models() {
		if provider, ok := model.Instance().(ForeignKeyProvider); ok {
			constraints = append(constraints, provider.ForeignKeys()...)
		}
	}
	return constraints
}

// AddAllForeignKeys adds every constraint with ALTER TABLE. Failures are
// logged and skipped. SQLite cannot add constraints to an existing table, so
// the call is a no-op there; inline constraints from CREATE TABLE apply.
func (fkm *ForeignKeyManager) AddAllForeignKeys(ctx context.Context, db bun.IDB) error {
	if db.Dialect().Name() == dialect.SQLite {
		if fkm.logger != nil {
			fkm.logger.Debug("Skipping ALTER TABLE foreign keys on sqlite", "constraints", len(fkm.constraints))
		}
		return nil
	}
	for _, constraint := range fkm.constraints {
		if err := fkm.addForeignKey(ctx, db, constraint); err != nil {
			if fkm.logger != nil {
				fkm.logger.Debug("Failed to add foreign key constraint", "constraint", constraint.GenerateConstraintName(), "error", err.Error())
			}
			continue
		}
		if fkm.logger != nil {
			fkm.logger.Debug("Successfully added foreign key constraint", "constraint", constraint.GenerateConstraintName())
		}
	}
	return nil
}

func (fkm *ForeignKeyManager) addForeignKey(ctx context.Context, db bun.IDB, constraint ForeignKeyConstraint) error {
	_, err := db.ExecContext(ctx, constraint.GenerateSQL())
	return err
}

// ListAllConstraints returns all configured constraints.
func (fkm *ForeignKeyManager) ListAllConstraints() []ForeignKeyConstraint {
	return fkm.constraints
}

// ValidateConstraints checks the configured constraints for common issues.
func (fkm *ForeignKeyManager) ValidateConstraints() []error {
	var errs []error
	for _, constraint := range fkm.constraints {
		errs = append(errs, constraint.Validate()...)
	}
	return errs
}

// Validate reports missing names and unknown referential actions.
func (fk *ForeignKeyConstraint) Validate() []error {
	var errs []error
	if fk.Table == "" {
		errs = append(errs, fmt.Errorf("table name cannot be empty"))
	}
	if fk.Column == "" {
		errs = append(errs, fmt.Errorf("column name cannot be empty: %s", fk.Table))
	}
	if fk.ReferenceTable == "" {
		errs = append(errs, fmt.Errorf("reference table name cannot be empty: %s.%s", fk.Table, fk.Column))
	}
	if fk.ReferenceColumn == "" {
		errs = append(errs, fmt.Errorf("reference column name cannot be empty: %s.%s -> %s", fk.Table, fk.Column, fk.ReferenceTable))
	}
	if fk.OnDelete != "" && !isReferentialAction(fk.OnDelete) {
		errs = append(errs, fmt.Errorf("invalid delete policy: %s, constraint: %s", fk.OnDelete, fk.GenerateConstraintName()))
	}
	if fk.OnUpdate != "" && !isReferentialAction(fk.OnUpdate) {
		errs = append(errs, fmt.Errorf("invalid update policy: %s, constraint: %s", fk.OnUpdate, fk.GenerateConstraintName()))
	}
	return errs
}

func isReferentialAction(action string) bool {
	for _, valid := range validReferentialActions {
		if strings.EqualFold(action, valid) {
			return true
		}
	}
	return false
}
