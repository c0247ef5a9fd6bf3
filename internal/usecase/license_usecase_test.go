package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ampnm-backend/config"
	"ampnm-backend/internal/license"
	"ampnm-backend/internal/model"
	"ampnm-backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return m.err
}

func newLicenseUsecase(t *testing.T) (*LicenseUsecase, *gorm.DB, *fakeMailer) {
	db := newTestDB(t, config.PortalModels...)
	mail := &fakeMailer{}
	return NewLicenseUsecase(repository.NewLicenseRepository(db), repository.NewProductRepository(db), mail), db, mail
}

func seedLicense(t *testing.T, db *gorm.DB, lic model.License) *model.License {
	t.Helper()
	product := model.Product{Name: "Pro", Price: 10, MaxDevices: lic.MaxDevices, LicenseDurationDays: 365}
	require.NoError(t, db.Where(model.Product{Name: "Pro"}).FirstOrCreate(&product).Error)
	lic.ProductID = product.ID
	require.NoError(t, db.Create(&lic).Error)
	return &lic
}

func TestVerifyUnknownKey(t *testing.T) {
	uc, _, _ := newLicenseUsecase(t)
	resp, err := uc.Verify(context.Background(), license.VerifyRequest{AppLicenseKey: "NOPE", InstallationID: "i1"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, license.CodeInvalid, resp.ActualStatus)
}

func TestVerifyBindsInstallation(t *testing.T) {
	uc, db, _ := newLicenseUsecase(t)
	ctx := context.Background()
	seedLicense(t, db, model.License{LicenseKey: "K1", MaxDevices: 10, Status: model.LicenseActive})

	resp, err := uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: "K1", InstallationID: "inst-a", CurrentDeviceCount: 4})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 10, resp.MaxDevices)
	assert.Equal(t, license.CodeActive, resp.ActualStatus)
	assert.Nil(t, resp.GracePeriodEnd)

	var stored model.License
	require.NoError(t, db.Where("license_key = ?", "K1").First(&stored).Error)
	assert.Equal(t, "inst-a", stored.InstallationID)
	assert.Equal(t, 4, stored.CurrentDevices)
	assert.NotNil(t, stored.LastVerifiedAt)

	resp, err = uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: "K1", InstallationID: "inst-b"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, license.CodeInUse, resp.ActualStatus)

	require.NoError(t, db.Where("license_key = ?", "K1").First(&stored).Error)
	assert.Equal(t, "inst-a", stored.InstallationID)
}

func TestVerifyRevoked(t *testing.T) {
	uc, db, _ := newLicenseUsecase(t)
	seedLicense(t, db, model.License{LicenseKey: "K1", MaxDevices: 10, Status: model.LicenseRevoked})

	resp, err := uc.Verify(context.Background(), license.VerifyRequest{AppLicenseKey: "K1", InstallationID: "inst-a"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, license.CodeRevoked, resp.ActualStatus)
}

func TestVerifyExpiry(t *testing.T) {
	uc, db, _ := newLicenseUsecase(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return now }

	inGrace := now.Add(-2 * 24 * time.Hour)
	pastGrace := now.Add(-8 * 24 * time.Hour)
	future := now.Add(24 * time.Hour)
	seedLicense(t, db, model.License{LicenseKey: "GRACE", MaxDevices: 5, Status: model.LicenseActive, ExpiresAt: &inGrace})
	seedLicense(t, db, model.License{LicenseKey: "DEAD", MaxDevices: 5, Status: model.LicenseActive, ExpiresAt: &pastGrace})
	seedLicense(t, db, model.License{LicenseKey: "FREE", MaxDevices: 5, Status: model.LicenseFree, ExpiresAt: &future})

	resp, err := uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: "GRACE", InstallationID: "i"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, license.CodeGracePeriod, resp.ActualStatus)
	require.NotNil(t, resp.GracePeriodEnd)
	assert.Equal(t, inGrace.Add(GracePeriod).Format(time.RFC3339), *resp.GracePeriodEnd)

	resp, err = uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: "DEAD", InstallationID: "i"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, license.CodeExpired, resp.ActualStatus)

	resp, err = uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: "FREE", InstallationID: "i"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, license.CodeFree, resp.ActualStatus)
}

func TestCreateDemo(t *testing.T) {
	uc, db, mail := newLicenseUsecase(t)
	ctx := context.Background()

	_, err := uc.CreateDemo(ctx, "")
	assert.ErrorIs(t, err, ErrNoDemoProduct)

	require.NoError(t, db.Create(&model.Product{Name: "Demo", MaxDevices: 5, LicenseDurationDays: 7, IsDemo: true}).Error)

	lic, err := uc.CreateDemo(ctx, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(lic.LicenseKey, "AMPNM-"))
	assert.Equal(t, 5, lic.MaxDevices)
	require.NotNil(t, lic.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *lic.ExpiresAt, time.Minute)
	assert.Empty(t, mail.sent)

	mail.err = errors.New("smtp down")
	lic2, err := uc.CreateDemo(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, lic.LicenseKey, lic2.LicenseKey)
	uc.WaitMail()
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "jane@example.com", mail.sent[0].to)
	assert.Contains(t, mail.sent[0].body, lic2.LicenseKey)

	var verr *ValidationError
	_, err = uc.CreateDemo(ctx, "victim@example.com, other@example.com")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid email format.", verr.Message)
	uc.WaitMail()
	assert.Len(t, mail.sent, 1)

	var issued int64
	require.NoError(t, db.Model(&model.License{}).Count(&issued).Error)
	assert.EqualValues(t, 2, issued)

	resp, err := uc.Verify(ctx, license.VerifyRequest{AppLicenseKey: lic2.LicenseKey, InstallationID: "i"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, 5, resp.MaxDevices)
}
