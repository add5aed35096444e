package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casavia/brokerage-api/internal/model"
	"github.com/casavia/brokerage-api/internal/repository"
	"github.com/casavia/brokerage-api/internal/utils"
)

func newMockInquiryRepo(t *testing.T) (*repository.InquiryRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repository.NewInquiryRepo(db), mock
}

func sampleInquiry() *model.Inquiry {
	return &model.Inquiry{
		Name:             "Ben Cruz",
		Email:            "ben.cruz@example.com",
		Phone:            "09171234567",
		Message:          "Interested in a viewing of this listing next week.",
		PropertyID:       2,
		PropertyTitle:    "Two Bedroom Condo in Makati",
		PropertyPrice:    5200000,
		PropertyLocation: "Makati",
	}
}

func TestClaimLoserGetsAlreadyClaimed(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)

	// The conditional update matches nothing because another agent holds
	// the row; the re-read explains why.
	mock.ExpectExec("UPDATE inquiries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT assigned_to, status FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to", "status"}).
			AddRow(int64(5), model.InquiryClaimed))

	_, err := repo.Claim(context.Background(), 3, 7)
	assert.ErrorIs(t, err, repository.ErrAlreadyClaimed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimMissingRow(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)

	mock.ExpectExec("UPDATE inquiries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT assigned_to, status FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to", "status"}))

	_, err := repo.Claim(context.Background(), 404, 7)
	assert.ErrorIs(t, err, repository.ErrInquiryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimUnclaimableStatus(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)

	// Unassigned but no longer "new": the row exists, nobody owns it, yet
	// its lifecycle forbids claiming.
	mock.ExpectExec("UPDATE inquiries").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT assigned_to, status FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"assigned_to", "status"}).
			AddRow(nil, model.InquiryDealCancelled))

	_, err := repo.Claim(context.Background(), 3, 7)
	assert.ErrorIs(t, err, repository.ErrIllegalTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReturnsExistingTicketOnDuplicate(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)
	submitted := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ticket_number, created_at FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_number", "created_at"}).
			AddRow("INQ-2026-007", submitted))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), sampleInquiry())
	var dup *repository.DuplicateInquiryError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "INQ-2026-007", dup.Ticket)
	assert.Equal(t, submitted, dup.SubmittedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRetriesTicketInFreshTransaction(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)
	now := time.Now().UTC()
	year := now.Year()

	// First attempt loses the unique key to a concurrent submission and
	// rolls its transaction back.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ticket_number, created_at FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_number", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectExec("INSERT INTO inquiries").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	// The second attempt opens a new transaction, so its recount sees the
	// winner's committed row and the next number succeeds.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT ticket_number, created_at FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"ticket_number", "created_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("INSERT INTO inquiries").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM inquiries")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()

	inq := sampleInquiry()
	require.NoError(t, repo.Create(context.Background(), inq))
	assert.Equal(t, uint64(11), inq.ID)
	assert.Equal(t, utils.FormatTicket(year, 6), inq.TicketNumber)
	assert.Equal(t, model.InquiryNew, inq.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateGivesUpAfterRepeatedTicketLosses(t *testing.T) {
	repo, mock := newMockInquiryRepo(t)

	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT ticket_number, created_at FROM inquiries")).
			WillReturnRows(sqlmock.NewRows([]string{"ticket_number", "created_at"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM inquiries")).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4 + i))
		mock.ExpectExec("INSERT INTO inquiries").
			WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		mock.ExpectRollback()
	}

	err := repo.Create(context.Background(), sampleInquiry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retries exhausted")
	assert.NoError(t, mock.ExpectationsWereMet())
}
