package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/ordertrack/app/models"
	"github.com/shashiranjanraj/ordertrack/app/repositories"
	"github.com/shashiranjanraj/ordertrack/app/services"
	"github.com/shashiranjanraj/ordertrack/pkg/apperr"
)

type orderFixture struct {
	db    *gorm.DB
	svc   *services.OrderService
	admin *models.User
	alice *models.User
	bob   *models.User
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := testDB(t)
	return &orderFixture{
		db:    db,
		svc:   services.NewOrderService(repositories.NewOrderRepository(db)),
		admin: createUser(t, db, "admin@example.com", models.RoleAdmin, true),
		alice: createUser(t, db, "alice@example.com", models.RoleCustomer, true),
		bob:   createUser(t, db, "bob@example.com", models.RoleCustomer, true),
	}
}

func TestCreateOrderStartsWithCreationHistory(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Mechanical keyboard", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, order.CurrentStatus)

	detail, err := f.svc.Get(context.Background(), f.alice, order.ID)
	require.NoError(t, err)
	require.Len(t, detail.History, 1)
	entry := detail.History[0]
	assert.Nil(t, entry.OldStatus)
	assert.Equal(t, models.StatusCreated, entry.NewStatus)
	assert.Nil(t, entry.ChangedByUserID)
	assert.Nil(t, entry.Note)
}

func TestCreateOrderRequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), f.alice, f.alice.ID, "ORD-1", "Keyboard", nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestCreateOrderDuplicateNumberConflicts(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), f.admin, f.bob.ID, "ORD-1", "Mouse", nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestGetOrderOwnerScoping(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), f.alice, order.ID)
	assert.NoError(t, err, "owner reads own order")

	_, err = f.svc.Get(context.Background(), f.admin, order.ID)
	assert.NoError(t, err, "admin reads any order")

	_, err = f.svc.Get(context.Background(), f.bob, order.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden, "foreign order is forbidden, not hidden")

	_, err = f.svc.Get(context.Background(), f.admin, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)

	detail, err := f.svc.UpdateStatus(context.Background(), f.admin, order.ID, models.StatusShipped, strptr("left the warehouse"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusShipped, detail.CurrentStatus)
	require.Len(t, detail.History, 2)

	last := detail.History[1]
	require.NotNil(t, last.OldStatus)
	assert.Equal(t, models.StatusCreated, *last.OldStatus)
	assert.Equal(t, models.StatusShipped, last.NewStatus)
	require.NotNil(t, last.ChangedByUserID)
	assert.Equal(t, f.admin.ID, *last.ChangedByUserID)
	require.NotNil(t, last.Note)
	assert.Equal(t, "left the warehouse", *last.Note)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)

	// Backwards and no-op moves are legal; every one is still recorded.
	for _, s := range []models.OrderStatus{models.StatusDelivered, models.StatusProcessing, models.StatusProcessing} {
		_, err = f.svc.UpdateStatus(context.Background(), f.admin, order.ID, s, nil)
		require.NoError(t, err)
	}

	detail, err := f.svc.Get(context.Background(), f.admin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, detail.CurrentStatus)
	require.Len(t, detail.History, 4)

	noop := detail.History[3]
	require.NotNil(t, noop.OldStatus)
	assert.Equal(t, models.StatusProcessing, *noop.OldStatus)
	assert.Equal(t, models.StatusProcessing, noop.NewStatus)
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.alice, order.ID, models.StatusShipped, nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	detail, err := f.svc.Get(context.Background(), f.alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCreated, detail.CurrentStatus)
	assert.Len(t, detail.History, 1)
}

func TestGetByNumberMatchesGet(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), f.admin, order.ID, models.StatusProcessing, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), f.admin, order.ID, models.StatusShipped, nil)
	require.NoError(t, err)

	byID, err := f.svc.Get(context.Background(), f.alice, order.ID)
	require.NoError(t, err)
	byNumber, err := f.svc.GetByNumber(context.Background(), f.alice, "ORD-1")
	require.NoError(t, err)

	assert.Equal(t, byID.ID, byNumber.ID)
	require.Equal(t, len(byID.History), len(byNumber.History))
	for i := range byID.History {
		assert.Equal(t, byID.History[i].ID, byNumber.History[i].ID)
	}

	_, err = f.svc.GetByNumber(context.Background(), f.bob, "ORD-1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	_, err = f.svc.GetByNumber(context.Background(), f.alice, "ORD-404")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListIsRoleScoped(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), f.admin, f.bob.ID, "ORD-2", "Mouse", nil)
	require.NoError(t, err)

	all, err := f.svc.List(context.Background(), f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ORD-1", mine[0].OrderNumber)

	none, err := f.svc.List(context.Background(), createUser(t, f.db, "carol@example.com", models.RoleCustomer, true))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateDetailsLeavesAbsentFieldsAlone(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", strptr("87 keys"))
	require.NoError(t, err)

	updated, err := f.svc.UpdateDetails(context.Background(), f.alice, order.ID, strptr("Keyboard v2"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Keyboard v2", updated.Title)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "87 keys", *updated.Description)

	_, err = f.svc.UpdateDetails(context.Background(), f.bob, order.ID, strptr("hijacked"), nil)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestDeleteOrderCascadesHistory(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.svc.Create(context.Background(), f.admin, f.alice.ID, "ORD-1", "Keyboard", nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(context.Background(), f.admin, order.ID, models.StatusShipped, nil)
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), f.alice, order.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, f.svc.Delete(context.Background(), f.admin, order.ID))

	_, err = f.svc.Get(context.Background(), f.admin, order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	var count int64
	require.NoError(t, f.db.Model(&models.OrderStatusHistory{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Zero(t, count, "history rows removed with their order")

	err = f.svc.Delete(context.Background(), f.admin, order.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
