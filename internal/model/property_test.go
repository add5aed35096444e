package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casavia/brokerage-api/internal/model"
)

func TestComputeCommission(t *testing.T) {
	// 3% of a 5M sale.
	assert.InDelta(t, 150000.0, model.ComputeCommission(5000000, 3), 0.001)
	// 2.5% of 1.2M.
	assert.InDelta(t, 30000.0, model.ComputeCommission(1200000, 2.5), 0.001)
	assert.Zero(t, model.ComputeCommission(0, 3))
}

func TestDefaultCommissionRate(t *testing.T) {
	amount := model.ComputeCommission(2000000, model.DefaultCommissionRate)
	assert.InDelta(t, 60000.0, amount, 0.001)
}

func TestSaleReason(t *testing.T) {
	got := model.SaleReason("Ana Reyes", 5000000, 3, 150000)
	assert.Equal(t, "sold by Ana Reyes for 5000000.00 (commission 150000.00 at 3.00%)", got)
}

func TestReservationReason(t *testing.T) {
	assert.Equal(t, "reserved by Ana Reyes for 24 hours", model.ReservationReason("Ana Reyes", 24))
	assert.Equal(t, "reserved by Ana Reyes for 48 hours", model.ReservationReason("Ana Reyes", 48))
}

func TestInquiryVisibleToAgent(t *testing.T) {
	var inq model.Inquiry
	assert.True(t, inq.VisibleToAgent(7), "unassigned inquiries sit in the shared pool")

	owner := uint64(7)
	inq.AssignedTo = &owner
	assert.True(t, inq.VisibleToAgent(7))
	assert.False(t, inq.VisibleToAgent(8))
}
