package game

import "errors"

// Errors returned by game operations. Callers match them with errors.Is.
var (
	ErrInvalidBoxNumber   = errors.New("invalid box number")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidLabel       = errors.New("invalid label")
	ErrInvalidContributor = errors.New("invalid contributor")
	ErrInvalidRules       = errors.New("invalid game rules")
	ErrInsufficientFunds  = errors.New("insufficient funds to initialize the game")
	ErrNotLeadingLabel    = errors.New("not the leading label")
	ErrNoContribution     = errors.New("no contribution found for the claimant")
	ErrTimeLockNotElapsed = errors.New("cooldown has not elapsed yet")
	ErrAmountOverflow     = errors.New("amount overflows the box or prize pool")
	ErrLedgerFull         = errors.New("box has reached its contributor limit")
	ErrGameExists         = errors.New("game already exists")
	ErrGameNotFound       = errors.New("game not found")
	ErrInvariantViolated  = errors.New("game invariant violated")
)
