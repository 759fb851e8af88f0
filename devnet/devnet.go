// Package devnet provides an in-process backend that implements the
// registry, royalty, and usage service surfaces over a store.Store. It
// behaves like a single-node development ledger: every write commits
// immediately, produces a confirmed receipt, and emits the same named
// events the production services do.
//
// Content and license ids are assigned by the backend, never by callers;
// counters are seeded from the store so a devnet can be reopened over
// existing data without id collisions.
package devnet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veralith/provenance"
	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/store"
	"github.com/veralith/provenance/types"
	"github.com/veralith/provenance/usage"
)

// defaultBalance is the native-unit balance every account starts with.
var defaultBalance = types.NewAmount(1_000_000_000_000)

// Devnet is an in-process ledger backend over a store.
type Devnet struct {
	store store.Store

	mu            sync.Mutex
	seeded        bool
	nextContentID int64
	nextLicenseID int64
	height        int64
	txCounter     uint64
	txs           map[string]chain.TxStatus
	balances      map[string]types.Amount
}

// New creates a devnet over the given store. The store must already be
// migrated; Migrate is not called here.
func New(st store.Store) *Devnet {
	return &Devnet{
		store:    st,
		txs:      make(map[string]chain.TxStatus),
		balances: make(map[string]types.Amount),
	}
}

// Dial returns capability-bound service handles. The capability is
// enforced on this side as well: write calls on a read-only binding fail
// even if a caller bypasses the client-side gate.
func (d *Devnet) Dial(ctx context.Context, capability provenance.Capability) (provenance.Services, error) {
	if err := d.seed(ctx); err != nil {
		return provenance.Services{}, err
	}
	return provenance.Services{
		Registry: &registryService{dev: d, capability: capability},
		Royalty:  &royaltyService{dev: d, capability: capability},
		Usage:    &usageService{dev: d, capability: capability},
		Chain:    &chainAdapter{dev: d},
	}, nil
}

// seed initializes the id counters from the store on first use.
func (d *Devnet) seed(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seeded {
		return nil
	}

	maxContent, err := d.store.MaxContentID(ctx)
	if err != nil {
		return fmt.Errorf("devnet: seed content ids: %w", err)
	}
	maxLicense, err := d.store.MaxLicenseID(ctx)
	if err != nil {
		return fmt.Errorf("devnet: seed license ids: %w", err)
	}

	d.nextContentID = maxContent
	d.nextLicenseID = maxLicense
	d.seeded = true
	return nil
}

// allocContentID returns the next content id.
func (d *Devnet) allocContentID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextContentID++
	return d.nextContentID
}

// allocLicenseID returns the next license id.
func (d *Devnet) allocLicenseID() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextLicenseID++
	return d.nextLicenseID
}

// commit records a confirmed transaction at the next block height and
// returns its receipt carrying the given events.
func (d *Devnet) commit(events ...chain.Event) *chain.Receipt {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.height++
	d.txCounter++
	hash := fmt.Sprintf("0x%064x", d.txCounter)
	d.txs[hash] = chain.TxConfirmed

	return &chain.Receipt{
		TxHash: hash,
		Status: chain.TxConfirmed,
		Height: d.height,
		Events: events,
	}
}

// balanceOf returns an account's balance, funding it on first access.
func (d *Devnet) balanceOf(account string) types.Amount {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.balances[account]
	if !ok {
		b = defaultBalance
		d.balances[account] = b
	}
	return b
}

// transfer moves value between accounts. The payer must cover the amount.
func (d *Devnet) transfer(payer, recipient string, amount types.Amount) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	from, ok := d.balances[payer]
	if !ok {
		from = defaultBalance
	}
	if from.LessThan(amount) {
		return fmt.Errorf("%w: insufficient balance for %s", provenance.ErrTransactionFailed, payer)
	}
	to, ok := d.balances[recipient]
	if !ok {
		to = defaultBalance
	}

	d.balances[payer] = from.Sub(amount)
	d.balances[recipient] = to.Add(amount)
	return nil
}

// FundAccount sets an account's balance. Intended for tests and fixtures.
func (d *Devnet) FundAccount(account string, amount types.Amount) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.balances[account] = amount
}

// IssueLicense issues a license to an account. Licensing is a service-side
// operation on the production backends, so the devnet exposes it directly
// rather than through a dialed binding. The template's ID and Entity
// fields are assigned here.
func (d *Devnet) IssueLicense(ctx context.Context, template usage.License) (*usage.License, error) {
	if template.Licensee == "" {
		return nil, fmt.Errorf("%w: licensee required", provenance.ErrInvalidInput)
	}
	if _, err := d.store.GetContent(ctx, template.ContentID); err != nil {
		return nil, err
	}
	if err := d.seed(ctx); err != nil {
		return nil, err
	}

	license := template
	license.ID = d.allocLicenseID()
	license.Entity = types.NewEntity()
	license.Active = true
	if license.StartTime.IsZero() {
		license.StartTime = time.Now().UTC()
	}

	if err := d.store.CreateLicense(ctx, &license); err != nil {
		return nil, err
	}
	d.commit(chain.Event{
		Name: usage.EventLicenseIssued,
		Args: []any{license.ID, license.Licensee, license.ContentID},
	})
	return &license, nil
}

// RevokeLicense deactivates a license.
func (d *Devnet) RevokeLicense(ctx context.Context, licenseID int64) error {
	license, err := d.store.GetLicense(ctx, licenseID)
	if err != nil {
		return err
	}
	if !license.Active {
		return provenance.ErrLicenseRevoked
	}

	license.Active = false
	if err := d.store.UpdateLicense(ctx, license); err != nil {
		return err
	}
	d.commit(chain.Event{
		Name: usage.EventLicenseRevoked,
		Args: []any{licenseID},
	})
	return nil
}
