package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ampnm-backend/internal/license"
	"ampnm-backend/internal/mailer"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/google/uuid"
)

// GracePeriod is how long an expired license keeps verifying.
const GracePeriod = 7 * 24 * time.Hour

type LicenseUsecase struct {
	licenses repository.LicenseRepository
	products repository.ProductRepository
	mail     mailer.Sender
	now      func() time.Time

	mailing sync.WaitGroup
}

func NewLicenseUsecase(licenses repository.LicenseRepository, products repository.ProductRepository, mail mailer.Sender) *LicenseUsecase {
	return &LicenseUsecase{licenses: licenses, products: products, mail: mail, now: time.Now}
}

func (u *LicenseUsecase) Products(ctx context.Context) ([]model.Product, error) {
	return u.products.GetAll(ctx)
}

// CreateDemo issues a license on the demo product. When email is set the key
// is mailed in the background; a mail failure does not fail the request.
func (u *LicenseUsecase) CreateDemo(ctx context.Context, email string) (*model.License, error) {
	email = strings.TrimSpace(email)
	if email != "" && !validEmail(email) {
		return nil, invalid("Invalid email format.")
	}

	product, err := u.products.FindDemo(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoDemoProduct
		}
		return nil, fmt.Errorf("find demo product: %w", err)
	}

	expires := u.now().Add(time.Duration(product.LicenseDurationDays) * 24 * time.Hour)
	lic := &model.License{
		LicenseKey: newLicenseKey(),
		ProductID:  product.ID,
		Status:     model.LicenseActive,
		MaxDevices: product.MaxDevices,
		ExpiresAt:  &expires,
		Product:    *product,
	}
	if err := u.licenses.Create(ctx, lic); err != nil {
		return nil, fmt.Errorf("create demo license: %w", err)
	}

	if email != "" {
		body := fmt.Sprintf("<p>Your AMPNM demo license key:</p><p><b>%s</b></p><p>It is valid until %s for up to %d devices.</p>",
			lic.LicenseKey, expires.Format("2006-01-02"), lic.MaxDevices)
		u.mailing.Add(1)
		go func(id uint) {
			defer u.mailing.Done()
			if err := u.mail.Send(email, "Your AMPNM demo license", body); err != nil {
				slog.Warn("demo license mail failed", "license_id", id, "error", err)
			}
		}(lic.ID)
	}
	return lic, nil
}

// WaitMail blocks until every queued demo license mail has been attempted.
func (u *LicenseUsecase) WaitMail() {
	u.mailing.Wait()
}

// Verify answers a verification request from an AMPNM installation and
// records the reported device count.
func (u *LicenseUsecase) Verify(ctx context.Context, req license.VerifyRequest) (license.VerifyResponse, error) {
	lic, err := u.licenses.FindByKey(ctx, strings.TrimSpace(req.AppLicenseKey))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return reject(license.CodeInvalid, "Invalid license key."), nil
		}
		return license.VerifyResponse{}, fmt.Errorf("find license: %w", err)
	}

	now := u.now()
	bound := lic.InstallationID
	if bound == "" && lic.Status != model.LicenseRevoked {
		bound = req.InstallationID
	}
	if err := u.licenses.RecordVerification(ctx, lic.ID, bound, int(req.CurrentDeviceCount), now); err != nil {
		return license.VerifyResponse{}, fmt.Errorf("record verification: %w", err)
	}

	if lic.Status == model.LicenseRevoked {
		return reject(license.CodeRevoked, "This license has been revoked."), nil
	}
	if lic.InstallationID != "" && req.InstallationID != lic.InstallationID {
		return reject(license.CodeInUse, "This license is already in use by another installation."), nil
	}

	resp := license.VerifyResponse{
		Success:      true,
		MaxDevices:   lic.MaxDevices,
		Message:      "License is active.",
		ActualStatus: lic.Status,
	}
	if lic.ExpiresAt != nil && now.After(*lic.ExpiresAt) {
		graceEnd := lic.ExpiresAt.Add(GracePeriod)
		if now.After(graceEnd) {
			return reject(license.CodeExpired, "This license has expired."), nil
		}
		end := graceEnd.Format(time.RFC3339)
		resp.ActualStatus = license.CodeGracePeriod
		resp.Message = fmt.Sprintf("License expired. Grace period ends %s.", graceEnd.Format("2006-01-02 15:04"))
		resp.GracePeriodEnd = &end
	}
	return resp, nil
}

func reject(code, msg string) license.VerifyResponse {
	return license.VerifyResponse{Success: false, Message: msg, ActualStatus: code}
}

func newLicenseKey() string {
	return "AMPNM-" + strings.ToUpper(uuid.NewString())
}
