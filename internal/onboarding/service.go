// Package onboarding tracks the one-time welcome carousel and decides which
// part of the app the operator should see.
package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
	"github.com/pharmalink/pharmacy-pos/pkg/storage/kv"
)

// CompleteKey holds "true" once the carousel has been dismissed.
const CompleteKey = "onboarding:complete"

// Stage is the top-level area the UI should route to.
type Stage string

const (
	StageOnboarding Stage = "onboarding"
	StageAuth       Stage = "auth"
	StageApp        Stage = "app"
)

// Step is one carousel page.
type Step struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

var steps = []Step{
	{Title: "Welcome to Manzu Pharmacy Portal", Subtitle: "Manage orders, inventory, and notifications seamlessly from your mobile device."},
	{Title: "Feature Highlight", Subtitle: "Find and compare medications from nearby pharmacies, and fill orders quickly."},
	{Title: "Get Started", Subtitle: "Sign in to access your pharmacy dashboard and manage everything on the go."},
}

// Status reports the carousel state.
type Status struct {
	Complete bool   `json:"complete"`
	Steps    []Step `json:"steps"`
}

// AppState is the routing decision for the UI shell.
type AppState struct {
	Stage              Stage         `json:"stage"`
	OnboardingComplete bool          `json:"onboardingComplete"`
	SignedIn           bool          `json:"signedIn"`
	User               *session.User `json:"user,omitempty"`
}

// Service defines the behavior needed by the onboarding controller.
type Service interface {
	Status(ctx context.Context) (*Status, error)
	Complete(ctx context.Context) (*Status, error)
	AppState(ctx context.Context) (*AppState, error)
}

type service struct {
	store   kv.Store
	session session.Reader
}

func NewService(store kv.Store, sess session.Reader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("kv store is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session reader is required")
	}
	return &service{store: store, session: sess}, nil
}

func (s *service) Status(ctx context.Context) (*Status, error) {
	complete, err := s.complete(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{Complete: complete, Steps: Steps()}, nil
}

func (s *service) Complete(ctx context.Context) (*Status, error) {
	if err := s.store.Set(ctx, CompleteKey, "true"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist onboarding flag")
	}
	return &Status{Complete: true, Steps: Steps()}, nil
}

// AppState gates on onboarding first, then on a live session.
func (s *service) AppState(ctx context.Context) (*AppState, error) {
	complete, err := s.complete(ctx)
	if err != nil {
		return nil, err
	}
	state := &AppState{Stage: StageOnboarding, OnboardingComplete: complete}
	if !complete {
		return state, nil
	}

	sess, ok := s.session.Current()
	if !ok {
		state.Stage = StageAuth
		return state, nil
	}
	state.Stage = StageApp
	state.SignedIn = true
	state.User = sess.User
	return state, nil
}

func (s *service) complete(ctx context.Context) (bool, error) {
	value, err := s.store.Get(ctx, CompleteKey)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read onboarding flag")
	}
	return value == "true", nil
}

// Steps returns a copy of the carousel pages.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
