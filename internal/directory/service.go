package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/profiledir/internal/ir"
	"github.com/roach88/profiledir/internal/ledger"
	"github.com/roach88/profiledir/internal/policy"
	"github.com/roach88/profiledir/internal/shard"
)

const shardWidth = shard.Width

// DefaultResolveConcurrency bounds parallel record reads per operation.
const DefaultResolveConcurrency = 8

// Service is the directory. It holds no state between calls; everything
// lives in the ledger.
//
// Thread-safety: all methods are safe for concurrent use provided the
// ledger is.
type Service struct {
	ledger      ledger.Ledger
	tree        *shard.Tree
	self        ir.Identity
	policy      *policy.Policy
	logger      *slog.Logger
	concurrency int
	fetches     singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPolicy sets the profile policy. Defaults to policy.Default().
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithResolveConcurrency bounds how many records are read in parallel.
// Values below 1 are ignored.
func WithResolveConcurrency(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.concurrency = n
		}
	}
}

// New creates a directory over l acting as self.
// self is the author of every profile this Service creates.
func New(l ledger.Ledger, self ir.Identity, opts ...Option) *Service {
	s := &Service{
		ledger:      l,
		tree:        shard.NewTree(l),
		self:        self,
		logger:      slog.Default(),
		concurrency: DefaultResolveConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy == nil {
		s.policy = policy.Default()
	}
	return s
}

// Self returns the identity this Service writes as.
func (s *Service) Self() ir.Identity {
	return s.self
}

// CreateProfile registers p under the caller's identity.
//
// Steps, in order: uniqueness check against the shard, record write, shard
// ensure, shard → profile edge tagged with the username, identity → profile
// edge tagged ir.ProfileTag.
//
// Fails with INVALID_USERNAME, POLICY_VIOLATION, DUPLICATE_USERNAME or
// PROFILE_EXISTS before anything is written. On a ledger.AtomicLinker
// a creator that loses the race for the username also fails with
// DUPLICATE_USERNAME; its record stays in the ledger unreferenced.
func (s *Service) CreateProfile(ctx context.Context, p ir.Profile) (ir.ProfileRecord, error) {
	p = p.Clone()
	username := p.UsernameKey()

	sh, err := shard.For(username)
	if err != nil {
		return ir.ProfileRecord{}, newInvalidUsernameError(p.Username, err)
	}
	if err := s.policy.Validate(p); err != nil {
		return ir.ProfileRecord{}, newPolicyViolationError(p.Username, err)
	}

	usernameTag := ir.Tag(username)
	taken, err := ledger.HasTag(ctx, s.ledger, sh.Address, usernameTag)
	if err != nil {
		return ir.ProfileRecord{}, fmt.Errorf("create profile: check username: %w", err)
	}
	if taken {
		return ir.ProfileRecord{}, newDuplicateUsernameError(p.Username, sh.Address)
	}

	existing, ok, err := ledger.First(s.ledger.Links(ctx, s.self.Address(), ir.WithTag(ir.ProfileTag)))
	if err != nil {
		return ir.ProfileRecord{}, fmt.Errorf("create profile: check identity: %w", err)
	}
	if ok {
		return ir.ProfileRecord{}, newProfileExistsError(p.Username, existing.Target)
	}

	addr, err := s.ledger.PutProfile(ctx, s.self, p)
	if err != nil {
		return ir.ProfileRecord{}, fmt.Errorf("create profile: %w", err)
	}

	created, err := s.tree.Ensure(ctx, sh)
	if err != nil {
		return ir.ProfileRecord{}, fmt.Errorf("create profile: %w", err)
	}
	if created {
		s.logger.Debug("shard created", "shard", sh.Path, "address", sh.Address)
	}

	if err := s.linkUsername(ctx, sh, usernameTag, addr); err != nil {
		return ir.ProfileRecord{}, err
	}

	if _, err := s.ledger.AddLink(ctx, s.self.Address(), addr, ir.ProfileTag); err != nil {
		return ir.ProfileRecord{}, fmt.Errorf("create profile: link identity: %w", err)
	}

	s.logger.Info("profile created",
		"username", p.Username,
		"shard", sh.Prefix,
		"address", addr,
		"identity", s.self,
	)

	return ir.ProfileRecord{Identity: s.self, Profile: p}, nil
}

// linkUsername writes the shard → profile edge.
func (s *Service) linkUsername(ctx context.Context, sh shard.Shard, tag ir.Tag, addr ir.Address) error {
	atomic, ok := s.ledger.(ledger.AtomicLinker)
	if !ok {
		if _, err := s.ledger.AddLink(ctx, sh.Address, addr, tag); err != nil {
			return fmt.Errorf("create profile: link username: %w", err)
		}
		return nil
	}

	_, inserted, err := atomic.AddLinkIfAbsent(ctx, sh.Address, addr, tag)
	if err != nil {
		return fmt.Errorf("create profile: link username: %w", err)
	}
	if !inserted {
		s.logger.Warn("username lost creation race", "username", string(tag), "shard", sh.Prefix)
		return newDuplicateUsernameError(string(tag), sh.Address)
	}
	return nil
}

// GetProfile returns the profile bound to id, paired with id.
// Returns nil and no error when id has no profile. If several profile
// edges exist the first one wins.
func (s *Service) GetProfile(ctx context.Context, id ir.Identity) (*ir.ProfileRecord, error) {
	edge, ok, err := ledger.First(s.ledger.Links(ctx, id.Address(), ir.WithTag(ir.ProfileTag)))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !ok {
		return nil, nil
	}

	entry, err := s.fetch(ctx, edge.Target)
	if err != nil {
		return nil, err
	}
	return &ir.ProfileRecord{Identity: id, Profile: entry.Profile}, nil
}

// SearchProfiles returns every profile in the shard named by the first
// three characters of prefix, in creation order. Characters past the third
// do not narrow the result.
func (s *Service) SearchProfiles(ctx context.Context, prefix string) ([]ir.ProfileRecord, error) {
	prefix = norm.NFC.String(prefix)
	sh, err := shard.For(prefix)
	if err != nil {
		return nil, newPrefixTooShortError(prefix, err)
	}

	edges, err := ledger.Collect(s.ledger.Links(ctx, sh.Address, ir.AnyTag()))
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	records, err := s.resolve(ctx, edges)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("profiles searched", "shard", sh.Prefix, "count", len(records))
	return records, nil
}

// ListAllProfiles returns every profile in the directory, shard by shard in
// the order shards were created, and in creation order within a shard.
func (s *Service) ListAllProfiles(ctx context.Context) ([]ir.ProfileRecord, error) {
	shards, err := s.tree.Shards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	var edges []ir.Edge
	for _, addr := range shards {
		shardEdges, err := ledger.Collect(s.ledger.Links(ctx, addr, ir.AnyTag()))
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		edges = append(edges, shardEdges...)
	}

	records, err := s.resolve(ctx, edges)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("profiles listed", "shards", len(shards), "count", len(records))
	return records, nil
}

// fetch reads one record. Concurrent reads of the same address share a
// single ledger call. The shared call is detached from any one caller's
// cancellation; each caller still returns as soon as its own ctx is done.
func (s *Service) fetch(ctx context.Context, addr ir.Address) (ir.Entry, error) {
	shared := context.WithoutCancel(ctx)
	ch := s.fetches.DoChan(string(addr), func() (any, error) {
		return s.ledger.GetProfile(shared, addr)
	})

	select {
	case <-ctx.Done():
		return ir.Entry{}, fmt.Errorf("resolve %s: %w", addr, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, ir.ErrNotFound) {
				return ir.Entry{}, newNotFoundError(addr, res.Err)
			}
			return ir.Entry{}, fmt.Errorf("resolve %s: %w", addr, res.Err)
		}
		return res.Val.(ir.Entry), nil
	}
}
