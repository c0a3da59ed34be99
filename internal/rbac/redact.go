package rbac

import (
	"context"
	"errors"
	"log/slog"

	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
)

// Redactor enforces field permissions on entity writes. It operates on the
// document form of entities so enforcement stays generic over entity types
// without reflection.
type Redactor struct {
	Fields FieldPermissionRepository
	Roles  RoleRepository
	Users  UserDirectory
	Logger *slog.Logger
	// Reverts, when set, counts enforced field writes.
	Reverts interface{ FieldReverted() }

	// HonorActions applies each rule's declared action (redact or
	// substitute) to owned fields. When false, enforcement reverts the
	// field to its previous value regardless of the declared action,
	// matching the historical behavior this engine replaces.
	HonorActions bool
}

// Apply returns the incoming document with every field the actor may not
// change restored (or redacted/substituted, see HonorActions) from the
// stored document. A nil old document means an initial create; no fields
// are locked on that path.
func (r *Redactor) Apply(ctx context.Context, username, className string, newDoc, oldDoc docstore.Document) (docstore.Document, error) {
	if oldDoc == nil || len(newDoc) == 0 {
		return newDoc, nil
	}

	user, err := r.Users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			// Unknown actors own no field permissions.
			return newDoc, nil
		}
		return nil, err
	}

	roles, err := r.Roles.ByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	roleNames := make([]string, len(roles))
	for i, role := range roles {
		roleNames[i] = role.Name
	}

	rules, err := r.Fields.ForActor(ctx, username, roleNames, className)
	if err != nil {
		return nil, err
	}

	result := newDoc.Clone()
	for _, rule := range rules {
		if rule.ClassName != className {
			continue
		}
		key, ok := result.Key(rule.PropertyName)
		if !ok {
			continue
		}
		if r.HonorActions {
			r.applyAction(result, key, rule)
			continue
		}
		if oldKey, present := oldDoc.Key(rule.PropertyName); present {
			result[key] = oldDoc[oldKey]
		} else {
			delete(result, key)
		}
		if r.Reverts != nil {
			r.Reverts.FieldReverted()
		}
		if r.Logger != nil {
			r.Logger.Debug("field reverted", slog.String("class", className), slog.String("property", key), slog.String("user", username))
		}
	}
	return result, nil
}

func (r *Redactor) applyAction(doc docstore.Document, key string, rule FieldPermission) {
	switch rule.Action {
	case FieldActionSubstitute:
		doc[key] = rule.SubstitutionText
	default:
		delete(doc, key)
	}
}
