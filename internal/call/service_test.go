package call

import (
	"testing"

	"stokpos-backend/internal/apperr"
	"stokpos-backend/internal/models"
	"stokpos-backend/internal/realtime"
	"stokpos-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceTargetsConnectedClerk(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)

	clerkSink := testutil.ConnectRecorder(t, clerk.ID)
	otherSink := testutil.ConnectRecorder(t, 0)

	crec, err := Place(cashier.ID, clerk.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CallPending, crec.Status)

	assert.True(t, clerkSink.Received(realtime.EventCallNew))
	// Hedefli gönderim başka oturumlara sızmamalı
	assert.False(t, otherSink.Received(realtime.EventCallNew))
}

func TestPlaceFallsBackToBroadcast(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)

	// Tezgahtarın canlı oturumu yok, çağrı herkese duyurulur
	bystander := testutil.ConnectRecorder(t, 0)

	_, err := Place(cashier.ID, clerk.ID)
	require.NoError(t, err)
	assert.True(t, bystander.Received(realtime.EventCallNew))
}

func TestPlaceUnknownClerk(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)

	_, err := Place(cashier.ID, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	var count int64
	db.Model(&models.Call{}).Count(&count)
	assert.Zero(t, count)
}

func TestRespondMapsAnswers(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)

	cashierSink := testutil.ConnectRecorder(t, cashier.ID)

	crec, err := Place(cashier.ID, clerk.ID)
	require.NoError(t, err)

	updated, err := Respond(crec.ID, "have_customer", clerk.ID, clerk.Name)
	require.NoError(t, err)
	assert.Equal(t, models.CallOccupied, updated.Status)
	assert.True(t, cashierSink.Received(realtime.EventCallResponse))

	// Cevaplanan çağrı tekrar cevaplanamaz
	_, err = Respond(crec.ID, "answered", clerk.ID, clerk.Name)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestRespondFallsBackToBroadcastWhenCallerUnmapped(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)

	// Ne kasiyerin ne tezgahtarın eşlenmiş oturumu var
	bystander := testutil.ConnectRecorder(t, 0)

	crec, err := Place(cashier.ID, clerk.ID)
	require.NoError(t, err)

	_, err = Respond(crec.ID, "have_customer", clerk.ID, clerk.Name)
	require.NoError(t, err)

	// Cevap yine de teslim edilir: broadcast üzerinden
	assert.True(t, bystander.Received(realtime.EventCallResponse))
	for _, e := range bystander.Events() {
		if e.Event == realtime.EventCallResponse {
			payload := e.Data.(map[string]any)
			// Ham cevap ve ekrana çevrilen karşılık ayrı alanlar
			assert.Equal(t, "have_customer", payload["response"])
			assert.Equal(t, "occupied", payload["message"])
		}
	}
}

func TestRespondComing(t *testing.T) {
	db := testutil.SetupDB(t)
	cashier := testutil.CreateUser(t, db, "kasiyer", models.RoleCashier)
	clerk := testutil.CreateUser(t, db, "tezgahtar", models.RoleClerk)

	crec, err := Place(cashier.ID, clerk.ID)
	require.NoError(t, err)

	updated, err := Respond(crec.ID, "answered", clerk.ID, clerk.Name)
	require.NoError(t, err)
	assert.Equal(t, models.CallAnswered, updated.Status)

	var got models.Call
	require.NoError(t, db.First(&got, crec.ID).Error)
	assert.Equal(t, models.CallAnswered, got.Status)
}
