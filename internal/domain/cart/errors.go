package cart

import "github.com/velux/backend/internal/domain/shared"

// Cart domain errors
var (
	ErrCartNotFound         = shared.NewDomainError("CART_NOT_FOUND", "Cart not found")
	ErrItemNotFound         = shared.NewDomainError("CART_ITEM_NOT_FOUND", "Product is not in the cart")
	ErrInvalidQuantity      = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be a positive integer")
	ErrProductUnavailable   = shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available or out of stock")
	ErrSessionKeyRequired   = shared.NewDomainError("SESSION_KEY_REQUIRED", "Session key is required for anonymous carts")
	ErrMergeTargetAnonymous = shared.NewDomainError("INVALID_MERGE_TARGET", "Guest carts can only be merged into a user cart")
)

// ErrQuantityLimit shares the INVALID_QUANTITY code, so errors.Is matches it
// against ErrInvalidQuantity
var ErrQuantityLimit = shared.NewDomainError("INVALID_QUANTITY", "Quantity exceeds the limit of a cart line")
