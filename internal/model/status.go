package model

// This file is the single source of truth for the inquiry and property
// status vocabularies and their legal transitions. Every layer (handlers,
// repositories, duplicate checks) consults these tables instead of carrying
// its own copy of the status strings.

// Inquiry statuses.
const (
	InquiryNew               = "new"
	InquiryClaimed           = "claimed"
	InquiryAssigned          = "assigned"
	InquiryContacted         = "contacted"
	InquiryInProgress        = "in-progress"
	InquiryViewingScheduled  = "viewing-scheduled"
	InquiryNegotiating       = "negotiating"
	InquiryViewedInterested  = "viewed-interested"
	InquiryViewedNotInterest = "viewed-not-interested"
	InquiryDealSuccessful    = "deal-successful"
	InquiryDealCancelled     = "deal-cancelled"
	InquiryNoResponse        = "no-response"
)

// Property statuses.
const (
	PropertyDraft         = "draft"
	PropertyAvailable     = "available"
	PropertyReserved      = "reserved"
	PropertyUnderContract = "under-contract"
	PropertySold          = "sold"
	PropertyWithdrawn     = "withdrawn"
	PropertyOffMarket     = "off-market"
)

// Commission statuses.
const (
	CommissionPending = "pending"
	CommissionPaid    = "paid"
)

// TerminalInquiryStatuses is the canonical closed set. An inquiry in one of
// these states no longer blocks a new submission for the same email and
// property, cannot be claimed or reassigned, and accepts no further status
// changes.
var TerminalInquiryStatuses = []string{
	InquiryDealSuccessful,
	InquiryDealCancelled,
	InquiryNoResponse,
}

// inquiryTransitions maps each status to the set of statuses reachable from
// it through a regular status update. Claiming and admin assignment are
// handled separately: claim is only legal from "new" (and enforced
// atomically in storage), while admin assignment is legal from any
// non-terminal status.
var inquiryTransitions = map[string][]string{
	InquiryNew:      {InquiryClaimed, InquiryAssigned},
	InquiryClaimed:  {InquiryContacted, InquiryInProgress, InquiryViewingScheduled, InquiryNegotiating, InquiryDealCancelled, InquiryNoResponse},
	InquiryAssigned: {InquiryContacted, InquiryInProgress, InquiryViewingScheduled, InquiryNegotiating, InquiryDealCancelled, InquiryNoResponse},
	InquiryContacted: {
		InquiryInProgress, InquiryViewingScheduled, InquiryNegotiating,
		InquiryDealCancelled, InquiryNoResponse,
	},
	InquiryInProgress: {InquiryViewingScheduled, InquiryNegotiating, InquiryDealCancelled, InquiryNoResponse},
	InquiryViewingScheduled: {
		InquiryNegotiating, InquiryViewedInterested, InquiryViewedNotInterest,
		InquiryDealCancelled, InquiryNoResponse,
	},
	InquiryNegotiating: {
		InquiryViewedInterested, InquiryViewedNotInterest,
		InquiryDealSuccessful, InquiryDealCancelled, InquiryNoResponse,
	},
	InquiryViewedInterested:  {InquiryNegotiating, InquiryDealSuccessful, InquiryDealCancelled, InquiryNoResponse},
	InquiryViewedNotInterest: {InquiryNegotiating, InquiryDealCancelled, InquiryNoResponse},
	InquiryDealSuccessful:    {},
	InquiryDealCancelled:     {},
	InquiryNoResponse:        {},
}

// propertyTransitions is the closed graph of property status changes. "sold"
// is terminal; withdrawn and off-market listings can be brought back to
// available.
var propertyTransitions = map[string][]string{
	PropertyDraft:         {PropertyAvailable},
	PropertyAvailable:     {PropertyReserved, PropertyUnderContract, PropertySold, PropertyWithdrawn, PropertyOffMarket},
	PropertyReserved:      {PropertyAvailable, PropertyUnderContract, PropertySold, PropertyWithdrawn},
	PropertyUnderContract: {PropertyAvailable, PropertySold},
	PropertyWithdrawn:     {PropertyAvailable},
	PropertyOffMarket:     {PropertyAvailable},
	PropertySold:          {},
}

// IsInquiryStatus reports whether s is a declared inquiry status.
func IsInquiryStatus(s string) bool {
	_, ok := inquiryTransitions[s]
	return ok
}

// IsPropertyStatus reports whether s is a declared property status.
func IsPropertyStatus(s string) bool {
	_, ok := propertyTransitions[s]
	return ok
}

// IsTerminalInquiryStatus reports whether s belongs to the canonical
// terminal set.
func IsTerminalInquiryStatus(s string) bool {
	for _, t := range TerminalInquiryStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// CanTransitionInquiry reports whether a regular status update may move an
// inquiry from one status to another. Setting the current status again is
// rejected; use notes for "no change" touches.
func CanTransitionInquiry(from, to string) bool {
	for _, next := range inquiryTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionProperty reports whether a property may move between the two
// statuses.
func CanTransitionProperty(from, to string) bool {
	for _, next := range propertyTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
