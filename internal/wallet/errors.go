package wallet

import "errors"

var (
	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrInvalidWalletID     = errors.New("invalid wallet ID")
	ErrInvalidWalletKind   = errors.New("wallet kind must be physical or logical")
	ErrMissingWalletName   = errors.New("wallet name is required")
	ErrWalletNameTooLong   = errors.New("wallet name must be 100 characters or less")
	ErrDuplicateWalletName = errors.New("wallet name already exists for this user")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletInUse         = errors.New("wallet is referenced by transactions")
	ErrUnauthorizedAccess  = errors.New("wallet does not belong to user")
)
