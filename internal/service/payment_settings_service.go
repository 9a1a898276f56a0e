package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentSettingsService mantiene a lo sumo un registro activo. Las escrituras
// que activan un registro pasan por mu; entre procesos el índice parcial único
// de isActive rechaza el segundo activo (ErrConflict).
type PaymentSettingsService struct {
	repo PaymentSettingsRepository
	mu   sync.Mutex
}

func NewPaymentSettingsService(repo PaymentSettingsRepository) *PaymentSettingsService {
	return &PaymentSettingsService{repo: repo}
}

func applySettings(s *model.PaymentSettings, req dto.PaymentSettingsRequest) {
	s.BankName = req.BankName
	s.AccountNumber = req.AccountNumber
	s.AccountHolderName = req.AccountHolderName
	s.IFSCCode = req.IFSCCode
	s.BranchName = req.BranchName
	s.UPIID = req.UPIID
	s.UPIName = req.UPIName
	s.QRCodeImage = req.QRCodeImage
	s.GPayNumber = req.GPayNumber
	s.PhonePeNumber = req.PhonePeNumber
	s.PaytmNumber = req.PaytmNumber
	s.PaymentInstructions = req.PaymentInstructions
}

func settingsErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrSettingsNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrConflict
	default:
		return err
	}
}

// Active devuelve el registro que ve el comprador.
func (s *PaymentSettingsService) Active(ctx context.Context) (*model.PaymentSettings, error) {
	ps, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, settingsErr(err)
	}
	return ps, nil
}

func (s *PaymentSettingsService) List(ctx context.Context) ([]*model.PaymentSettings, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = []*model.PaymentSettings{}
	}
	return all, nil
}

// Create guarda un registro nuevo ya activo y desactiva el resto.
func (s *PaymentSettingsService) Create(ctx context.Context, createdBy string, req dto.PaymentSettingsRequest) (*model.PaymentSettings, error) {
	ps := &model.PaymentSettings{IsActive: true}
	applySettings(ps, req)
	if oid, err := primitive.ObjectIDFromHex(createdBy); err == nil {
		ps.CreatedBy = oid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeactivateOthers(ctx, ""); err != nil {
		return nil, fmt.Errorf("deactivating payment settings: %w", err)
	}
	if err := s.repo.Insert(ctx, ps); err != nil {
		return nil, settingsErr(err)
	}
	log.Printf("[payment-settings] %s creado y activo", ps.ID.Hex())
	return ps, nil
}

// Update reemplaza los campos de presentación. isActive nil conserva el estado.
func (s *PaymentSettingsService) Update(ctx context.Context, id string, req dto.PaymentSettingsRequest) (*model.PaymentSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, settingsErr(err)
	}
	applySettings(ps, req)
	if req.IsActive != nil {
		if *req.IsActive {
			if err := s.repo.DeactivateOthers(ctx, id); err != nil {
				return nil, fmt.Errorf("deactivating payment settings: %w", err)
			}
		}
		ps.IsActive = *req.IsActive
	}
	if err := s.repo.Replace(ctx, ps); err != nil {
		return nil, settingsErr(err)
	}
	return ps, nil
}

// Toggle invierte isActive; al activar, desactiva los demás.
func (s *PaymentSettingsService) Toggle(ctx context.Context, id string) (*model.PaymentSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, settingsErr(err)
	}
	if !ps.IsActive {
		if err := s.repo.DeactivateOthers(ctx, id); err != nil {
			return nil, fmt.Errorf("deactivating payment settings: %w", err)
		}
	}
	ps.IsActive = !ps.IsActive
	if err := s.repo.Replace(ctx, ps); err != nil {
		return nil, settingsErr(err)
	}
	log.Printf("[payment-settings] %s activo=%t", ps.ID.Hex(), ps.IsActive)
	return ps, nil
}

func (s *PaymentSettingsService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return settingsErr(s.repo.Delete(ctx, id))
}
