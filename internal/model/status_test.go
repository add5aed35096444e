package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casavia/brokerage-api/internal/model"
)

func TestIsInquiryStatus(t *testing.T) {
	assert.True(t, model.IsInquiryStatus(model.InquiryNew))
	assert.True(t, model.IsInquiryStatus(model.InquiryViewingScheduled))
	assert.True(t, model.IsInquiryStatus(model.InquiryDealSuccessful))
	assert.False(t, model.IsInquiryStatus(""))
	assert.False(t, model.IsInquiryStatus("open"))
	assert.False(t, model.IsInquiryStatus("NEW"))
}

func TestTerminalInquiryStatuses(t *testing.T) {
	assert.True(t, model.IsTerminalInquiryStatus(model.InquiryDealSuccessful))
	assert.True(t, model.IsTerminalInquiryStatus(model.InquiryDealCancelled))
	assert.True(t, model.IsTerminalInquiryStatus(model.InquiryNoResponse))

	assert.False(t, model.IsTerminalInquiryStatus(model.InquiryNew))
	assert.False(t, model.IsTerminalInquiryStatus(model.InquiryNegotiating))
	assert.False(t, model.IsTerminalInquiryStatus(model.InquiryViewedNotInterest))
}

func TestCanTransitionInquiry(t *testing.T) {
	// The normal happy path of a worked inquiry.
	assert.True(t, model.CanTransitionInquiry(model.InquiryClaimed, model.InquiryContacted))
	assert.True(t, model.CanTransitionInquiry(model.InquiryContacted, model.InquiryViewingScheduled))
	assert.True(t, model.CanTransitionInquiry(model.InquiryViewingScheduled, model.InquiryViewedInterested))
	assert.True(t, model.CanTransitionInquiry(model.InquiryViewedInterested, model.InquiryNegotiating))
	assert.True(t, model.CanTransitionInquiry(model.InquiryNegotiating, model.InquiryDealSuccessful))

	// A deal cannot close before anyone negotiated.
	assert.False(t, model.CanTransitionInquiry(model.InquiryNew, model.InquiryDealSuccessful))
	assert.False(t, model.CanTransitionInquiry(model.InquiryClaimed, model.InquiryDealSuccessful))

	// Self transitions are rejected.
	assert.False(t, model.CanTransitionInquiry(model.InquiryContacted, model.InquiryContacted))

	// Terminal statuses go nowhere, including back to active work.
	for _, terminal := range model.TerminalInquiryStatuses {
		assert.False(t, model.CanTransitionInquiry(terminal, model.InquiryNew), terminal)
		assert.False(t, model.CanTransitionInquiry(terminal, model.InquiryContacted), terminal)
		assert.False(t, model.CanTransitionInquiry(terminal, model.InquiryDealSuccessful), terminal)
	}

	// Giving up is always possible from active statuses.
	assert.True(t, model.CanTransitionInquiry(model.InquiryClaimed, model.InquiryNoResponse))
	assert.True(t, model.CanTransitionInquiry(model.InquiryNegotiating, model.InquiryDealCancelled))
}

func TestCanTransitionProperty(t *testing.T) {
	assert.True(t, model.CanTransitionProperty(model.PropertyDraft, model.PropertyAvailable))
	assert.True(t, model.CanTransitionProperty(model.PropertyAvailable, model.PropertyReserved))
	assert.True(t, model.CanTransitionProperty(model.PropertyReserved, model.PropertyUnderContract))
	assert.True(t, model.CanTransitionProperty(model.PropertyUnderContract, model.PropertySold))

	// A lapsed or released reservation goes back to available.
	assert.True(t, model.CanTransitionProperty(model.PropertyReserved, model.PropertyAvailable))

	// Delisted properties can be relisted.
	assert.True(t, model.CanTransitionProperty(model.PropertyWithdrawn, model.PropertyAvailable))
	assert.True(t, model.CanTransitionProperty(model.PropertyOffMarket, model.PropertyAvailable))

	// Drafts cannot jump straight to sold, and sold is final.
	assert.False(t, model.CanTransitionProperty(model.PropertyDraft, model.PropertySold))
	assert.False(t, model.CanTransitionProperty(model.PropertySold, model.PropertyAvailable))
	assert.False(t, model.CanTransitionProperty(model.PropertySold, model.PropertyReserved))

	// Withdrawn properties must be relisted before selling.
	assert.False(t, model.CanTransitionProperty(model.PropertyWithdrawn, model.PropertySold))
}
