package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"congregationhub/internal/domain"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkInFixture() (*fakeSessionRepo, *fakeCheckInRepo, *fakeMemberRepo, *fakeEventRepo, *fakeEmailService) {
	sessionRepo := newFakeSessionRepo()
	checkInRepo := newFakeCheckInRepo()
	memberRepo := newFakeMemberRepo()
	eventRepo := newFakeEventRepo()
	emailService := &fakeEmailService{}

	eventRepo.byID["ev-1"] = &domain.Event{ID: "ev-1", Title: "Sunday Service", Status: domain.EventStatusLive}
	sessionRepo.byCode["4821"] = &domain.EventSession{ID: "sess-1", EventID: "ev-1", Code: "4821", Status: domain.SessionStatusActive}
	return sessionRepo, checkInRepo, memberRepo, eventRepo, emailService
}

func TestCheckInService_CheckInMember(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()
		memberRepo.byUserID["user-1"] = &domain.Member{ID: "mem-1", UserID: "user-1", FullName: "Sam Okafor"}

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		record, err := svc.CheckInMember(ctx, "4821", "user-1")
		require.NoError(t, err)
		require.Equal(t, "sess-1", record.CheckIn.SessionID)
		require.Equal(t, "ev-1", record.CheckIn.EventID)
		require.Equal(t, domain.CheckInTypeMember, record.CheckIn.Type)
		require.NotNil(t, record.CheckIn.MemberID)
		require.Equal(t, "mem-1", *record.CheckIn.MemberID)
		require.Equal(t, "Sunday Service", record.Event.Title)
	})

	t.Run("second check-in conflicts", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()
		memberRepo.byUserID["user-1"] = &domain.Member{ID: "mem-1", UserID: "user-1"}

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInMember(ctx, "4821", "user-1")
		require.NoError(t, err)
		_, err = svc.CheckInMember(ctx, "4821", "user-1")
		require.ErrorIs(t, err, domain.ErrAlreadyCheckedIn)
		require.Len(t, checkInRepo.created, 1)
	})

	t.Run("ended code behaves like unknown code", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()
		memberRepo.byUserID["user-1"] = &domain.Member{ID: "mem-1", UserID: "user-1"}
		delete(sessionRepo.byCode, "4821")

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInMember(ctx, "4821", "user-1")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing member profile", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInMember(ctx, "4821", "user-without-profile")
		require.Error(t, err)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestCheckInService_CheckInGuest(t *testing.T) {
	ctx := context.Background()

	t.Run("success with code", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		record, err := svc.CheckInGuest(ctx, "4821", domain.GuestDetails{FullName: "Jordan Lee", Phone: "555-0100"})
		require.NoError(t, err)
		require.Equal(t, domain.CheckInTypeGuest, record.CheckIn.Type)
		require.Equal(t, "sess-1", record.CheckIn.SessionID)
		require.Equal(t, 1, record.CheckIn.Guest.Adults)
	})

	t.Run("no code falls back to the live session", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()
		sessionRepo.activeSession = sessionRepo.byCode["4821"]
		sessionRepo.activeEvent = eventRepo.byID["ev-1"]

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		record, err := svc.CheckInGuest(ctx, "", domain.GuestDetails{FullName: "Jordan Lee", Phone: "555-0100"})
		require.NoError(t, err)
		require.Equal(t, "sess-1", record.CheckIn.SessionID)
	})

	t.Run("no code and nothing live", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInGuest(ctx, "", domain.GuestDetails{FullName: "Jordan Lee", Phone: "555-0100"})
		require.ErrorIs(t, err, domain.ErrNoActiveSession)
	})

	t.Run("missing name or phone is invalid", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInGuest(ctx, "4821", domain.GuestDetails{FullName: "  ", Phone: "555-0100"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		_, err = svc.CheckInGuest(ctx, "4821", domain.GuestDetails{FullName: "Jordan Lee"})
		require.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("dead code wins over missing fields", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		// Session resolution is checked first, so an unknown or ended code is
		// reported even when the form is also incomplete.
		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInGuest(ctx, "9999", domain.GuestDetails{FullName: "Jordan Lee"})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NotErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("repeat guest check-ins are allowed", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		guest := domain.GuestDetails{FullName: "Jordan Lee", Phone: "555-0100"}
		_, err := svc.CheckInGuest(ctx, "4821", guest)
		require.NoError(t, err)
		_, err = svc.CheckInGuest(ctx, "4821", guest)
		require.NoError(t, err)
		require.Len(t, checkInRepo.created, 2)
	})

	t.Run("first-time guest with consent gets a follow-up email", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInGuest(ctx, "4821", domain.GuestDetails{
			FullName:  "Jordan Lee",
			Phone:     "555-0100",
			Email:     "jordan@example.com",
			FirstTime: true,
			ContactOK: true,
		})
		require.NoError(t, err)
		require.Len(t, emailService.sent, 1)
		require.Equal(t, "jordan@example.com", emailService.sent[0].Email)
		require.Equal(t, "Sunday Service", emailService.sent[0].EventTitle)
	})

	t.Run("no consent means no email", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		_, err := svc.CheckInGuest(ctx, "4821", domain.GuestDetails{
			FullName:  "Jordan Lee",
			Phone:     "555-0100",
			Email:     "jordan@example.com",
			FirstTime: true,
			ContactOK: false,
		})
		require.NoError(t, err)
		require.Empty(t, emailService.sent)
	})

	t.Run("email failure does not fail the check-in", func(t *testing.T) {
		sessionRepo, checkInRepo, memberRepo, eventRepo, emailService := checkInFixture()
		emailService.err = errors.New("ses unavailable")

		svc := NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, testLogger(), time.Second)
		record, err := svc.CheckInGuest(ctx, "4821", domain.GuestDetails{
			FullName:  "Jordan Lee",
			Phone:     "555-0100",
			Email:     "jordan@example.com",
			FirstTime: true,
			ContactOK: true,
		})
		require.NoError(t, err)
		require.NotNil(t, record)
		require.Len(t, checkInRepo.created, 1)
	})
}
