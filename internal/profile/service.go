package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmalink/pharmacy-pos/pkg/auth/session"
	pkgerrors "github.com/pharmalink/pharmacy-pos/pkg/errors"
)

const requiredFieldsMessage = "Please fill in all required fields."

// Service defines the behavior needed by the profile controller.
type Service interface {
	Get(ctx context.Context, token string) (*Profile, error)
	Update(ctx context.Context, token string, req UpdateRequest) (*Profile, error)
}

type repository interface {
	Get(ctx context.Context, token string) (*Profile, error)
	Update(ctx context.Context, token string, body updateBody) error
}

type userCache interface {
	SetUser(user session.User)
}

type service struct {
	repo    repository
	session userCache
}

// ServiceParams bundles the dependencies required to build a profile service.
type ServiceParams struct {
	Repo    repository
	Session userCache
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	return &service{repo: params.Repo, session: params.Session}, nil
}

// Get loads the profile and refreshes the cached session user with it.
func (s *service) Get(ctx context.Context, token string) (*Profile, error) {
	p, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.session != nil {
		s.session.SetUser(p.sessionUser())
	}
	return p, nil
}

// Update sends the edited fields along with the location fields the form does
// not edit, then returns the refreshed profile.
func (s *service) Update(ctx context.Context, token string, req UpdateRequest) (*Profile, error) {
	req = trimmed(req)
	if req.UserName == "" || req.UserEmail == "" || req.PharmacyName == "" ||
		req.PharmacyAddress == "" || req.PharmacyPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, requiredFieldsMessage)
	}

	current, err := s.repo.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	body := updateBody{
		User: updateUserBody{Name: req.UserName, Email: req.UserEmail},
		Pharmacy: updatePharmacyBody{
			Name:          req.PharmacyName,
			Address:       req.PharmacyAddress,
			Phone:         req.PharmacyPhone,
			LicenseNumber: req.PharmacyLicense,
			State:         current.Pharmacy.State,
			LGA:           current.Pharmacy.LGA,
			Ward:          current.Pharmacy.Ward,
			Latitude:      current.Pharmacy.Latitude,
			Longitude:     current.Pharmacy.Longitude,
		},
	}
	if err := s.repo.Update(ctx, token, body); err != nil {
		return nil, err
	}
	return s.Get(ctx, token)
}

func trimmed(req UpdateRequest) UpdateRequest {
	req.UserName = strings.TrimSpace(req.UserName)
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	req.PharmacyName = strings.TrimSpace(req.PharmacyName)
	req.PharmacyAddress = strings.TrimSpace(req.PharmacyAddress)
	req.PharmacyPhone = strings.TrimSpace(req.PharmacyPhone)
	req.PharmacyLicense = strings.TrimSpace(req.PharmacyLicense)
	return req
}

func (p *Profile) sessionUser() session.User {
	return session.User{
		ID:    p.User.ID,
		Name:  p.User.Name,
		Email: p.User.Email,
		Role:  p.User.Role,
		Pharmacy: &session.Pharmacy{
			ID:            p.Pharmacy.ID,
			Name:          p.Pharmacy.Name,
			Address:       p.Pharmacy.Address,
			Phone:         p.Pharmacy.Phone,
			LicenseNumber: p.Pharmacy.LicenseNumber,
			Status:        p.Pharmacy.Status,
		},
	}
}
