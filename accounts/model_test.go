package accounts_test

import (
	"testing"
	"time"

	"github.com/mediadeck/signinkit/accounts"
	"github.com/mediadeck/signinkit/identity"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func testIdentity() *identity.Identity {
	return &identity.Identity{
		Subject:       "subject-1",
		Email:         "john.doe@example.com",
		Name:          "John Doe",
		GivenName:     "John",
		FamilyName:    "Doe",
		AvatarURL:     "https://example.com/avatar.png",
		GrantedScopes: []string{"openid", "email"},
	}
}

func TestCreateMaterializesAccount(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	model := accounts.NewModel(
		accounts.WithNowTime(func() time.Time { return now }),
		accounts.WithIDGenerator(func() string { return "local-1" }),
	)

	account, err := model.Create(testIdentity())
	require.NoError(t, err)
	require.Equal(t, "local-1", account.ID)
	require.Equal(t, "subject-1", account.Subject)
	require.Equal(t, "john.doe@example.com", account.Email)
	require.Equal(t, now, account.CreatedAt)
	require.True(t, account.HasScope("email"))
	require.False(t, account.HasScope("youtube"))
	require.Equal(t, account, model.Current())
}

func TestCreateReplacesCurrentAccount(t *testing.T) {
	model := accounts.NewModel()

	first, err := model.Create(testIdentity())
	require.NoError(t, err)

	second := testIdentity()
	second.Subject = "subject-2"
	account, err := model.Create(second)
	require.NoError(t, err)

	require.Equal(t, account, model.Current())
	require.NotEqual(t, first.Subject, model.Current().Subject)
}

func TestCreateRejectsMalformedIdentity(t *testing.T) {
	model := accounts.NewModel()

	_, err := model.Create(nil)
	require.True(t, errors.Is(err, accounts.ErrMalformedIdentity))

	_, err = model.Create(&identity.Identity{Subject: "   "})
	require.True(t, errors.Is(err, accounts.ErrMalformedIdentity))
	require.Nil(t, model.Current())
}

func TestDeleteLocalIsIdempotent(t *testing.T) {
	model := accounts.NewModel()

	model.DeleteLocal()
	require.Nil(t, model.Current())

	_, err := model.Create(testIdentity())
	require.NoError(t, err)
	model.DeleteLocal()
	model.DeleteLocal()
	require.Nil(t, model.Current())
}

func TestSubscribeObservesChanges(t *testing.T) {
	model := accounts.NewModel()

	var seen []*accounts.Account
	cancel := model.Subscribe(func(a *accounts.Account) {
		seen = append(seen, a)
	})

	account, err := model.Create(testIdentity())
	require.NoError(t, err)
	model.DeleteLocal()

	require.Len(t, seen, 2)
	require.Equal(t, account, seen[0])
	require.Nil(t, seen[1])

	cancel()
	_, err = model.Create(testIdentity())
	require.NoError(t, err)
	require.Len(t, seen, 2)
}

func TestDeleteWithNoAccountNotifiesNobody(t *testing.T) {
	model := accounts.NewModel()

	notified := 0
	cancel := model.Subscribe(func(*accounts.Account) { notified++ })
	defer cancel()

	model.DeleteLocal()
	require.Zero(t, notified)
}
