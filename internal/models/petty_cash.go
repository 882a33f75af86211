package models

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PettyCashEntryType string

const (
	PettyCashReplenishment PettyCashEntryType = "replenishment"
	PettyCashDisbursement  PettyCashEntryType = "disbursement"
)

// PettyCashEntry is one row of a custodian's cash journal.
//
// Entries form a chain per custodian: BalanceAfter of one entry is
// BalanceBefore of the next. Sequence makes the chain order explicit.
type PettyCashEntry struct {
	DefaultModel
	Date          time.Time
	Type          PettyCashEntryType
	Amount        decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	Custodian     string          `gorm:"index"`
	Category      string
	Sequence      uint64
	BalanceBefore decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	BalanceAfter  decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
}

func (p *PettyCashEntry) BeforeSave(_ *gorm.DB) error {
	p.Custodian = strings.TrimSpace(p.Custodian)
	p.Category = strings.TrimSpace(p.Category)

	if p.Date.IsZero() {
		p.Date = time.Now().In(time.UTC)
	} else {
		p.Date = p.Date.In(time.UTC)
	}

	return nil
}

// custodianLocks serializes the read-latest-then-insert critical section
// per custodian. Two concurrent entries for the same custodian must not
// compute the same BalanceBefore.
var custodianLocks sync.Map

func lockCustodian(custodian string) *sync.Mutex {
	mu, _ := custodianLocks.LoadOrStore(custodian, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RecordPettyCashEntry appends an entry to a custodian's journal.
//
// BalanceBefore is the custodian's latest BalanceAfter (zero for the
// first entry). The whole read-then-write is serialized per custodian.
func RecordPettyCashEntry(entry PettyCashEntry) (PettyCashEntry, error) {
	entry.Custodian = strings.TrimSpace(entry.Custodian)
	if entry.Custodian == "" {
		return entry, ErrCustodianRequired
	}
	if entry.Type != PettyCashReplenishment && entry.Type != PettyCashDisbursement {
		return entry, ErrPettyCashEntryTypeInvalid
	}
	if !entry.Amount.IsPositive() {
		return entry, ErrAmountNotPositive
	}

	mu := lockCustodian(entry.Custodian)
	mu.Lock()
	defer mu.Unlock()

	err := DB.Transaction(func(tx *gorm.DB) error {
		var latest PettyCashEntry
		err := tx.
			Where("custodian = ?", entry.Custodian).
			Order("sequence DESC").
			Limit(1).
			Find(&latest).Error
		if err != nil {
			return err
		}

		entry.Sequence = latest.Sequence + 1
		entry.BalanceBefore = latest.BalanceAfter
		entry.BalanceAfter = applyEntry(latest.BalanceAfter, entry)

		return tx.Create(&entry).Error
	})

	return entry, err
}

func applyEntry(balance decimal.Decimal, entry PettyCashEntry) decimal.Decimal {
	if entry.Type == PettyCashReplenishment {
		return balance.Add(entry.Amount)
	}
	return balance.Sub(entry.Amount)
}

// DeletePettyCashEntry removes an entry and recomputes the chain of all
// later entries for the custodian in the same transaction, so the chain
// invariant survives the deletion.
func DeletePettyCashEntry(id uuid.UUID) error {
	var entry PettyCashEntry
	if err := DB.First(&entry, "id = ?", id).Error; err != nil {
		return err
	}

	mu := lockCustodian(entry.Custodian)
	mu.Lock()
	defer mu.Unlock()

	return DB.Transaction(func(tx *gorm.DB) error {
		// Re-read under the lock, the entry may already be gone
		if err := tx.First(&entry, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}

		var later []PettyCashEntry
		err := tx.
			Where("custodian = ? AND sequence > ?", entry.Custodian, entry.Sequence).
			Order("sequence ASC").
			Find(&later).Error
		if err != nil {
			return err
		}

		balance := entry.BalanceBefore
		for i := range later {
			later[i].BalanceBefore = balance
			balance = applyEntry(balance, later[i])
			later[i].BalanceAfter = balance

			err := tx.Model(&later[i]).Updates(map[string]interface{}{
				"balance_before": later[i].BalanceBefore,
				"balance_after":  later[i].BalanceAfter,
			}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// CustodianSummary aggregates one custodian's journal.
type CustodianSummary struct {
	Custodian        string          `json:"custodian"`
	TotalReplenished decimal.Decimal `json:"totalReplenished"`
	TotalDisbursed   decimal.Decimal `json:"totalDisbursed"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	Active           bool            `json:"active"`
}

// PettyCashSummary aggregates the journal per custodian. A custodian with
// a positive balance is active.
func PettyCashSummary() ([]CustodianSummary, error) {
	type row struct {
		Custodian string
		Type      PettyCashEntryType
		Total     decimal.Decimal
	}

	var rows []row
	err := DB.Model(&PettyCashEntry{}).
		Select("custodian, type, SUM(amount) AS total").
		Group("custodian").
		Group("type").
		Order("custodian ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byCustodian := make(map[string]*CustodianSummary)
	order := []string{}
	for _, r := range rows {
		s, ok := byCustodian[r.Custodian]
		if !ok {
			s = &CustodianSummary{Custodian: r.Custodian}
			byCustodian[r.Custodian] = s
			order = append(order, r.Custodian)
		}

		if r.Type == PettyCashReplenishment {
			s.TotalReplenished = r.Total
		} else {
			s.TotalDisbursed = r.Total
		}
	}

	summaries := make([]CustodianSummary, 0, len(order))
	for _, custodian := range order {
		s := byCustodian[custodian]
		s.CurrentBalance = s.TotalReplenished.Sub(s.TotalDisbursed)
		s.Active = s.CurrentBalance.IsPositive()
		summaries = append(summaries, *s)
	}

	return summaries, nil
}

// PettyCashMismatch is one broken link found by the chain audit.
type PettyCashMismatch struct {
	Entry                 PettyCashEntry  `json:"entry"`
	ExpectedBalanceBefore decimal.Decimal `json:"expectedBalanceBefore"`
	ExpectedBalanceAfter  decimal.Decimal `json:"expectedBalanceAfter"`
}

// RecomputePettyCashChain replays a custodian's journal from the start
// and reports every entry whose stored balances do not match the
// recomputation. A reconciliation tool, not the hot path.
func RecomputePettyCashChain(custodian string) ([]PettyCashMismatch, error) {
	var entries []PettyCashEntry
	err := DB.
		Where("custodian = ?", custodian).
		Order("sequence ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	mismatches := []PettyCashMismatch{}
	balance := decimal.Zero
	for _, entry := range entries {
		after := applyEntry(balance, entry)

		if !entry.BalanceBefore.Equal(balance) || !entry.BalanceAfter.Equal(after) {
			mismatches = append(mismatches, PettyCashMismatch{
				Entry:                 entry,
				ExpectedBalanceBefore: balance,
				ExpectedBalanceAfter:  after,
			})
		}

		balance = after
	}

	return mismatches, nil
}
