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

// Package acl decides grant/deny/unknown for a (subject, object, operation,
// topic) tuple by traversing subject and object hierarchies against a
// document store, with an optional decision cache.
package acl

import "context"

// Decision is the outcome of an access check.
type Decision uint8

const (
	Unknown Decision = iota
	Grant
	Deny
)

// Args identifies one access check.
type Args struct {
	Subject   string
	Object    string
	Operation string
	Topic     string
}

// Role is an {id, name, description, topic} ACL role record.
type Role struct {
	ID          string
	Name        string
	Description string
	Topic       string
}

// RoleOperation binds an operation name to a role, granting or denying it.
type RoleOperation struct {
	ID        string
	RoleID    string
	Operation string
	Grant     bool
}

// Relation relates a subject to an object via a role, within a topic.
type Relation struct {
	ID      string
	Subject string
	Object  string
	RoleID  string
	Topic   string
}

// Query is a minimal equality-conjunction query against the store,
// modeled on the retrieved KV driver's filter shape.
type Query map[string]interface{}

// Store is the external document store ACL delegates persistence to. Only
// find is used by the evaluator; create/update/remove exist for the
// administrative surface that manages roles and relations.
type Store interface {
	FindRelations(ctx context.Context, topic string, q Query) ([]Relation, error)
	FindRoleOperations(ctx context.Context, topic string, q Query) ([]RoleOperation, error)
	Create(ctx context.Context, topic string, v interface{}) error
	Update(ctx context.Context, topic string, q Query, v interface{}) error
	Remove(ctx context.Context, topic string, q Query, v interface{}) error
}

// ParentIterator walks the parent chain of subject or object hierarchies.
// Neither acyclicity nor finiteness is guaranteed by the provider; the
// evaluator bounds its own traversal with maxDepth.
type ParentIterator interface {
	EachParent(ctx context.Context, id string, cb func(parent string) (cont bool, err error)) error
}

// Cache maps a request fingerprint to a cached decision, with the store
// owning TTL expiry semantics.
type Cache interface {
	Find(ctx context.Context, fingerprint string) (Decision, bool)
	Set(ctx context.Context, fingerprint string, d Decision)
}

// wildcardOperation matches any operation name recorded against a role,
// mirroring the "grant-all" convention used by administrative roles.
const wildcardOperation = "*"
