package service

import (
	"context"
	"fmt"

	"github.com/louisbranch/showbinder/internal/audit"
	"github.com/louisbranch/showbinder/internal/binder/route"
	apperrors "github.com/louisbranch/showbinder/internal/errors"
	"github.com/louisbranch/showbinder/internal/storage"
)

// AddChain creates the canonical hop chain for a signal on a binder.
func (s *Service) AddChain(ctx context.Context, actor, binderID string, signal int, name string) (route.CanonicalRoute, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return route.CanonicalRoute{}, err
	}
	if _, exists := record.ChainBySignal(signal); exists {
		return route.CanonicalRoute{}, apperrors.New(apperrors.CodeProfileDuplicateSignal, "binder already has a chain for this signal").
			WithMetadata(map[string]string{"signal": fmt.Sprintf("%d", signal)})
	}
	chainID, err := s.newID()
	if err != nil {
		return route.CanonicalRoute{}, fmt.Errorf("generate chain id: %w", err)
	}
	chain := route.NewChain(chainID, signal, name)
	record.Chains = append(record.Chains, chain)
	record.UpdatedAt = s.now().UTC()
	if err := s.store.PutBinder(ctx, record); err != nil {
		return route.CanonicalRoute{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "binder.chain_add",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    fmt.Sprintf("added hop chain for ISO-%d", signal),
	})
	return chain, nil
}

// InsertHop inserts a hop after the given position in a signal's chain.
func (s *Service) InsertHop(ctx context.Context, actor, binderID string, signal, position int, hop route.RouteHop) (route.CanonicalRoute, error) {
	return s.editChain(ctx, actor, binderID, signal,
		fmt.Sprintf("inserted %s hop after position %d on ISO-%d", hop.Kind, position, signal),
		func(chain *route.CanonicalRoute) error {
			return chain.InsertHopAfter(position, hop)
		})
}

// RemoveHop removes a hop from a signal's chain. Only custom hops are
// removable.
func (s *Service) RemoveHop(ctx context.Context, actor, binderID string, signal, position int) (route.CanonicalRoute, error) {
	return s.editChain(ctx, actor, binderID, signal,
		fmt.Sprintf("removed hop at position %d on ISO-%d", position, signal),
		func(chain *route.CanonicalRoute) error {
			return chain.RemoveHop(position)
		})
}

// PatchHop updates a hop's label, status, or metadata.
func (s *Service) PatchHop(ctx context.Context, actor, binderID string, signal, position int, patch route.HopPatch) (route.CanonicalRoute, error) {
	return s.editChain(ctx, actor, binderID, signal,
		fmt.Sprintf("patched hop at position %d on ISO-%d", position, signal),
		func(chain *route.CanonicalRoute) error {
			return chain.PatchHop(position, patch)
		})
}

func (s *Service) editChain(ctx context.Context, actor, binderID string, signal int, summary string, edit func(*route.CanonicalRoute) error) (route.CanonicalRoute, error) {
	record, err := s.store.GetBinder(ctx, binderID)
	if err != nil {
		return route.CanonicalRoute{}, err
	}
	chain, ok := record.ChainBySignal(signal)
	if !ok {
		return route.CanonicalRoute{}, apperrors.New(apperrors.CodeNotFound, "binder has no chain for this signal").
			WithMetadata(map[string]string{"signal": fmt.Sprintf("%d", signal)})
	}
	if err := edit(chain); err != nil {
		return route.CanonicalRoute{}, err
	}
	record.UpdatedAt = s.now().UTC()
	if err := s.store.PutBinder(ctx, record); err != nil {
		return route.CanonicalRoute{}, err
	}
	s.emit(ctx, storage.AuditEntry{
		Actor:      actor,
		Action:     "binder.chain_edit",
		TargetType: audit.TargetBinder,
		TargetID:   record.ID,
		Summary:    summary,
	})
	return chain.Clone(), nil
}
