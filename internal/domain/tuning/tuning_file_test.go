package tuning

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *TuningFile {
	t.Helper()
	f, err := NewTuningFile(
		uuid.New(),
		"golf7_edc17.bin",
		512*1024,
		"application/octet-stream",
		"tuning/original/golf7_edc17.bin",
		"stage 1 please",
		[]ModificationRequest{{Code: "stage1", Label: "Stage 1 remap"}},
	)
	require.NoError(t, err)
	f.ClearDomainEvents()
	f.ClearPendingAuditEntries()
	return f
}

func TestNewTuningFile(t *testing.T) {
	owner := uuid.New()

	t.Run("starts in RECEIVED with audit entry and event", func(t *testing.T) {
		f, err := NewTuningFile(owner, "ecu.bin", 1024, "application/octet-stream", "tuning/original/ecu.bin", "", nil)
		require.NoError(t, err)
		assert.Equal(t, StatusReceived, f.Status)
		assert.Equal(t, PaymentNotPaid, f.PaymentStatus)
		assert.True(t, f.Price.IsZero())
		require.Len(t, f.AuditLog, 1)
		assert.Equal(t, AuditActionCreated, f.AuditLog[0].Action)
		require.Len(t, f.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeFileReceived, f.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewTuningFile(uuid.Nil, "ecu.bin", 1024, "", "k", "", nil)
		require.Error(t, err)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		_, err := NewTuningFile(owner, "ecu.bin", MaxTuningFileSize+1, "", "k", "", nil)
		require.Error(t, err)
	})

	t.Run("rejects filename with path separators", func(t *testing.T) {
		_, err := NewTuningFile(owner, "../etc/passwd", 1024, "", "k", "", nil)
		require.Error(t, err)
	})
}

func TestStatusTransitions(t *testing.T) {
	actor := uuid.New()

	t.Run("happy path RECEIVED to PENDING to READY", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.ChangeStatus(StatusPending, &actor))
		assert.Equal(t, StatusPending, f.Status)
		require.NoError(t, f.ChangeStatus(StatusReady, &actor))
		assert.Equal(t, StatusReady, f.Status)
	})

	t.Run("each status change appends exactly one audit entry", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.ChangeStatus(StatusPending, &actor))
		entries := f.PendingAuditEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, AuditActionStatusChange, entries[0].Action)
		assert.Equal(t, "RECEIVED", entries[0].OldValue)
		assert.Equal(t, "PENDING", entries[0].NewValue)
	})

	t.Run("skipping PENDING requires an override", func(t *testing.T) {
		f := newTestFile(t)
		err := f.ChangeStatus(StatusReady, &actor)
		require.Error(t, err)
		assert.Equal(t, StatusReceived, f.Status)

		require.NoError(t, f.OverrideStatus(StatusReady, &actor))
		assert.Equal(t, StatusReady, f.Status)
		entries := f.PendingAuditEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, AuditActionAdminOverride, entries[0].Action)
	})

	t.Run("override can move backwards", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.OverrideStatus(StatusReady, &actor))
		require.NoError(t, f.OverrideStatus(StatusReceived, &actor))
		assert.Equal(t, StatusReceived, f.Status)
	})

	t.Run("no-op status change is rejected", func(t *testing.T) {
		f := newTestFile(t)
		require.Error(t, f.ChangeStatus(StatusReceived, &actor))
		require.Error(t, f.OverrideStatus(StatusReceived, &actor))
	})

	t.Run("status change raises FileStatusChanged event", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.ChangeStatus(StatusPending, &actor))
		events := f.GetDomainEvents()
		require.Len(t, events, 1)
		ev, ok := events[0].(*FileStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, StatusReceived, ev.OldStatus)
		assert.Equal(t, StatusPending, ev.NewStatus)
		assert.Equal(t, f.OriginalFilename, ev.FileName)
	})
}

func TestEstimatedTime(t *testing.T) {
	actor := uuid.New()

	t.Run("only allowed while PENDING", func(t *testing.T) {
		f := newTestFile(t)
		require.Error(t, f.SetEstimatedTime(120, &actor))
	})

	t.Run("start processing with estimate emits time event with bucket text", func(t *testing.T) {
		f := newTestFile(t)
		minutes := 120
		require.NoError(t, f.StartProcessing(&minutes, &actor))

		events := f.GetDomainEvents()
		require.Len(t, events, 2)
		timeEv, ok := events[1].(*EstimatedTimeSetEvent)
		require.True(t, ok)
		assert.Equal(t, "2 hours", timeEv.TimeText)
		assert.Equal(t, StatusPending, timeEv.Status)
		assert.Equal(t, 120, timeEv.EstimatedMinutes)
		require.NotNil(t, f.EstimatedSetAt)
	})

	t.Run("rejects non-positive estimate", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.ChangeStatus(StatusPending, &actor))
		require.Error(t, f.SetEstimatedTime(0, &actor))
	})
}

func TestFormatEstimatedTime(t *testing.T) {
	cases := map[int]string{
		1440: "1 day",
		240:  "4 hours",
		120:  "2 hours",
		60:   "1 hour",
		45:   "45 minutes",
		90:   "90 minutes",
	}
	for minutes, want := range cases {
		assert.Equal(t, want, FormatEstimatedTime(minutes))
	}
}

func TestRemainingMinutes(t *testing.T) {
	actor := uuid.New()
	f := newTestFile(t)
	require.NoError(t, f.ChangeStatus(StatusPending, &actor))
	require.NoError(t, f.SetEstimatedTime(60, &actor))

	t.Run("counts down from the estimate", func(t *testing.T) {
		now := f.EstimatedSetAt.Add(20 * time.Minute)
		assert.Equal(t, 40, f.RemainingMinutes(now))
	})

	t.Run("clamps at zero when overdue", func(t *testing.T) {
		now := f.EstimatedSetAt.Add(3 * time.Hour)
		assert.Equal(t, 0, f.RemainingMinutes(now))
	})

	t.Run("zero without estimate", func(t *testing.T) {
		fresh := newTestFile(t)
		assert.Equal(t, 0, fresh.RemainingMinutes(time.Now()))
	})
}

func TestAttachModifiedFile(t *testing.T) {
	actor := uuid.New()

	t.Run("always ends READY with modified metadata", func(t *testing.T) {
		for _, start := range []FileStatus{StatusReceived, StatusPending, StatusReady} {
			f := newTestFile(t)
			if start != StatusReceived {
				require.NoError(t, f.OverrideStatus(start, &actor))
				f.ClearDomainEvents()
				f.ClearPendingAuditEntries()
			}
			require.NoError(t, f.AttachModifiedFile("golf7_stage1.bin", 480*1024, "tuning/modified/golf7_stage1.bin", &actor))
			assert.Equal(t, StatusReady, f.Status, "from %s", start)
			assert.Equal(t, "golf7_stage1.bin", f.ModifiedFilename)
			assert.NotNil(t, f.ModifiedAt)
		}
	})

	t.Run("keeps original file metadata", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.AttachModifiedFile("out.bin", 100, "tuning/modified/out.bin", &actor))
		assert.Equal(t, "golf7_edc17.bin", f.OriginalFilename)
		assert.Equal(t, "tuning/original/golf7_edc17.bin", f.StorageKey)
	})

	t.Run("emits upload and status events", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.AttachModifiedFile("out.bin", 100, "tuning/modified/out.bin", &actor))
		events := f.GetDomainEvents()
		require.Len(t, events, 2)
		assert.Equal(t, EventTypeModifiedFileUploaded, events[0].EventType())
		assert.Equal(t, EventTypeFileStatusChanged, events[1].EventType())
	})
}

func TestPriceAndPayment(t *testing.T) {
	actor := uuid.New()

	t.Run("price change does not touch status", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.SetPrice(decimal.NewFromInt(4500), &actor))
		assert.Equal(t, StatusReceived, f.Status)
		entries := f.PendingAuditEntries()
		require.Len(t, entries, 1)
		assert.Equal(t, AuditActionPriceChange, entries[0].Action)
		assert.Equal(t, "0", entries[0].OldValue)
		assert.Equal(t, "4500", entries[0].NewValue)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		f := newTestFile(t)
		require.Error(t, f.SetPrice(decimal.NewFromInt(-1), &actor))
	})

	t.Run("payment flip is audited and independent", func(t *testing.T) {
		f := newTestFile(t)
		require.NoError(t, f.SetPaymentStatus(PaymentPaid, &actor))
		assert.Equal(t, PaymentPaid, f.PaymentStatus)
		assert.Equal(t, StatusReceived, f.Status)
		require.Error(t, f.SetPaymentStatus(PaymentPaid, &actor), "no-op flip rejected")
	})
}

func TestOwnership(t *testing.T) {
	f := newTestFile(t)
	assert.True(t, f.OwnedBy(f.OwnerUserID))
	assert.False(t, f.OwnedBy(uuid.New()))
}

func TestShortID(t *testing.T) {
	f := newTestFile(t)
	assert.Len(t, f.ShortID(), 8)
	assert.NotContains(t, f.ShortID(), "-")
}
