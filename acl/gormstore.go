/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package acl

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// gormRole, gormRoleOperation and gormRelation are the persisted row shapes
// backing Role, RoleOperation and Relation. Kept distinct from the exported
// types so the store's column/tag choices don't leak into the evaluator's
// vocabulary.
type gormRole struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	Description string
	Topic       string `gorm:"index"`
}

func (gormRole) TableName() string { return "acl_roles" }

type gormRoleOperation struct {
	ID        string `gorm:"primaryKey"`
	Topic     string `gorm:"index"`
	RoleID    string `gorm:"index"`
	Operation string `gorm:"index"`
	Grant     bool
}

func (gormRoleOperation) TableName() string { return "acl_role_operations" }

type gormRelation struct {
	ID      string `gorm:"primaryKey"`
	Topic   string `gorm:"index"`
	Subject string `gorm:"index"`
	Object  string `gorm:"index"`
	RoleID  string `gorm:"index"`
}

func (gormRelation) TableName() string { return "acl_relations" }

// GormStore is a Store backed by a gorm.DB, persisting roles, role
// operations and relations as ordinary tables. Any dialect gorm supports
// (sqlite, postgres, mysql, ...) works unmodified; this package only
// depends on gorm.io/gorm itself, never a specific driver.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and, if migrate is true, auto-migrates the ACL
// tables. A deployment that manages its own schema migrations passes
// migrate=false.
func NewGormStore(db *gorm.DB, migrate bool) (*GormStore, error) {
	s := &GormStore{db: db}
	if migrate {
		if err := db.AutoMigrate(&gormRole{}, &gormRoleOperation{}, &gormRelation{}); err != nil {
			return nil, fmt.Errorf("acl: auto-migrate failed: %w", err)
		}
	}
	return s, nil
}

func applyQuery(tx *gorm.DB, topic string, q Query) *gorm.DB {
	tx = tx.Where("topic = ?", topic)
	for k, v := range q {
		switch k {
		case "role_ids":
			tx = tx.Where("role_id IN ?", v)
		default:
			tx = tx.Where(fmt.Sprintf("%s = ?", k), v)
		}
	}
	return tx
}

func (s *GormStore) FindRelations(ctx context.Context, topic string, q Query) ([]Relation, error) {
	var rows []gormRelation
	if err := applyQuery(s.db.WithContext(ctx), topic, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Relation, 0, len(rows))
	for _, r := range rows {
		out = append(out, Relation{ID: r.ID, Subject: r.Subject, Object: r.Object, RoleID: r.RoleID, Topic: r.Topic})
	}
	return out, nil
}

func (s *GormStore) FindRoleOperations(ctx context.Context, topic string, q Query) ([]RoleOperation, error) {
	var rows []gormRoleOperation
	if err := applyQuery(s.db.WithContext(ctx), topic, q).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]RoleOperation, 0, len(rows))
	for _, r := range rows {
		out = append(out, RoleOperation{ID: r.ID, RoleID: r.RoleID, Operation: r.Operation, Grant: r.Grant})
	}
	return out, nil
}

// Create persists v, which must be a *Role, *RoleOperation or *Relation.
func (s *GormStore) Create(ctx context.Context, topic string, v interface{}) error {
	row, err := toGormRow(topic, v)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

// Update applies v's non-zero fields to every row matching topic and q.
func (s *GormStore) Update(ctx context.Context, topic string, q Query, v interface{}) error {
	row, err := toGormRow(topic, v)
	if err != nil {
		return err
	}
	model, err := emptyGormRow(v)
	if err != nil {
		return err
	}
	return applyQuery(s.db.WithContext(ctx), topic, q).Model(model).Updates(row).Error
}

// Remove deletes every row of v's kind matching topic and q.
func (s *GormStore) Remove(ctx context.Context, topic string, q Query, v interface{}) error {
	model, err := emptyGormRow(v)
	if err != nil {
		return err
	}
	return applyQuery(s.db.WithContext(ctx), topic, q).Delete(model).Error
}

func toGormRow(topic string, v interface{}) (interface{}, error) {
	switch t := v.(type) {
	case *Role:
		return &gormRole{ID: t.ID, Name: t.Name, Description: t.Description, Topic: topic}, nil
	case *RoleOperation:
		return &gormRoleOperation{ID: t.ID, Topic: topic, RoleID: t.RoleID, Operation: t.Operation, Grant: t.Grant}, nil
	case *Relation:
		return &gormRelation{ID: t.ID, Topic: topic, Subject: t.Subject, Object: t.Object, RoleID: t.RoleID}, nil
	default:
		return nil, fmt.Errorf("acl: gorm store cannot persist %T", v)
	}
}

func emptyGormRow(v interface{}) (interface{}, error) {
	switch v.(type) {
	case *Role:
		return &gormRole{}, nil
	case *RoleOperation:
		return &gormRoleOperation{}, nil
	case *Relation:
		return &gormRelation{}, nil
	default:
		return nil, fmt.Errorf("acl: gorm store cannot address %T", v)
	}
}
