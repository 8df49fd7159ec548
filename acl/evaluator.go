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

	"github.com/sabouaram/vaultrpc/errors"
)

// DefaultMaxHierarchyDepth bounds subject/object parent-chain traversal
// against a hierarchy provider that does not guarantee acyclicity.
const DefaultMaxHierarchyDepth = 64

// Evaluator decides access by delegating to a Store, two optional
// ParentIterator hierarchies, and an optional Cache.
type Evaluator struct {
	store          Store
	subjHierarchy  ParentIterator
	objHierarchy   ParentIterator
	cache          Cache
	maxDepth       int
}

type Option func(*Evaluator)

func WithSubjectHierarchy(h ParentIterator) Option { return func(e *Evaluator) { e.subjHierarchy = h } }
func WithObjectHierarchy(h ParentIterator) Option   { return func(e *Evaluator) { e.objHierarchy = h } }
func WithCache(c Cache) Option                      { return func(e *Evaluator) { e.cache = c } }
func WithMaxHierarchyDepth(n int) Option            { return func(e *Evaluator) { e.maxDepth = n } }

func New(store Store, opts ...Option) *Evaluator {
	e := &Evaluator{store: store, maxDepth: DefaultMaxHierarchyDepth}
	for _, o := range opts {
		o(e)
	}
	return e
}

func fingerprint(args, initialArgs Args) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		args.Object, args.Subject, args.Operation, args.Topic,
		initialArgs.Object, initialArgs.Subject, initialArgs.Operation, initialArgs.Topic)
}

// CheckAccess is the evaluator's entrypoint. initialArgs is the original,
// unrewritten request; args is rewritten by hierarchy recursion as the
// evaluator promotes to parent subjects/objects.
func (e *Evaluator) CheckAccess(ctx context.Context, args, initialArgs Args) (Decision, errors.Error) {
	if e.cache != nil {
		if d, ok := e.cache.Find(ctx, fingerprint(args, initialArgs)); ok && d != Unknown {
			return d, nil
		}
	}
	return e.find(ctx, args, initialArgs, 0)
}

func (e *Evaluator) find(ctx context.Context, args, initialArgs Args, depth int) (Decision, errors.Error) {
	relations, err := e.store.FindRelations(ctx, args.Topic, Query{"object": args.Object, "subject": args.Subject})
	if err != nil {
		return Deny, errors.PolicyStoreFailure.Error(err)
	}

	if len(relations) == 0 {
		return e.iterateSubjHierarchy(ctx, args, initialArgs, Unknown, depth)
	}

	roleIDs := make([]string, 0, len(relations))
	for _, r := range relations {
		roleIDs = append(roleIDs, r.RoleID)
	}

	ops, err := e.store.FindRoleOperations(ctx, args.Topic, Query{"role_ids": roleIDs, "operation": args.Operation})
	if err != nil {
		return Deny, errors.PolicyStoreFailure.Error(err)
	}

	status := Unknown
	for _, op := range ops {
		if op.Operation != args.Operation && op.Operation != wildcardOperation {
			continue
		}
		if op.Grant {
			status = Grant
			break
		}
		status = Deny
	}

	if status == Grant {
		e.cacheGrant(ctx, args, initialArgs)
		return Grant, nil
	}

	return e.iterateSubjHierarchy(ctx, args, initialArgs, status, depth)
}

func (e *Evaluator) cacheGrant(ctx context.Context, args, initialArgs Args) {
	if e.cache != nil {
		e.cache.Set(ctx, fingerprint(args, initialArgs), Grant)
	}
}

// iterateSubjHierarchy promotes args.Subject to each ancestor in turn. Any
// error or Grant among ancestors stops iteration and is reported as-is: an
// ancestor's grant does not short-circuit on an intervening deny, since a
// deny at one subject level says nothing about a different subject.
func (e *Evaluator) iterateSubjHierarchy(ctx context.Context, args, initialArgs Args, prevStatus Decision, depth int) (Decision, errors.Error) {
	if e.subjHierarchy == nil || depth >= e.maxDepth {
		return e.iterateObjHierarchy(ctx, args, initialArgs, prevStatus, depth)
	}

	result := prevStatus
	var resultErr errors.Error
	found := false

	err := e.subjHierarchy.EachParent(ctx, args.Subject, func(parent string) (bool, error) {
		nextArgs := Args{Object: args.Object, Subject: parent, Operation: args.Operation, Topic: args.Topic}
		d, ers := e.find(ctx, nextArgs, initialArgs, depth+1)
		if ers != nil {
			resultErr = ers
			found = true
			return false, nil
		}
		if d == Grant {
			result = Grant
			found = true
			return false, nil
		}
		return true, nil
	})

	if err != nil {
		return Deny, errors.PolicyStoreFailure.Error(err)
	}
	if found {
		if resultErr != nil {
			return Deny, resultErr
		}
		if result == Grant {
			return Grant, nil
		}
	}

	return e.iterateObjHierarchy(ctx, args, initialArgs, prevStatus, depth)
}

// iterateObjHierarchy promotes args.Object to each ancestor in turn. Unlike
// the subject pass, both Grant and Deny are terminal here: promoting to a
// parent object may introduce an explicit deny that must stand.
func (e *Evaluator) iterateObjHierarchy(ctx context.Context, args, initialArgs Args, prevStatus Decision, depth int) (Decision, errors.Error) {
	if e.objHierarchy == nil || prevStatus == Deny || depth >= e.maxDepth {
		return Deny, nil
	}

	result := Deny
	var resultErr errors.Error
	found := false

	err := e.objHierarchy.EachParent(ctx, args.Object, func(parent string) (bool, error) {
		nextArgs := Args{Object: parent, Subject: args.Subject, Operation: args.Operation, Topic: args.Topic}
		d, ers := e.find(ctx, nextArgs, initialArgs, depth+1)
		if ers != nil {
			resultErr = ers
			found = true
			return false, nil
		}
		if d == Grant || d == Deny {
			result = d
			found = true
			return false, nil
		}
		return true, nil
	})

	if err != nil {
		return Deny, errors.PolicyStoreFailure.Error(err)
	}
	if found {
		if resultErr != nil {
			return Deny, resultErr
		}
		return result, nil
	}

	return Deny, nil
}
