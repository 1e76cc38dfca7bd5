package cart

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository persists carts and their lines.
// Find methods load the cart together with its items.
type CartRepository interface {
	// FindByID finds a cart by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Cart, error)

	// FindByUserID finds the cart owned by userID and locks its row for the
	// rest of the transaction. Every operation on a user cart starts here, so
	// they run one at a time.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// FindAnonymousBySessionKey finds an ownerless cart with exactly this
	// session key and locks its row for the rest of the transaction, so two
	// requests cannot merge the same guest cart twice
	FindAnonymousBySessionKey(ctx context.Context, sessionKey string) (*Cart, error)

	// Create inserts a new cart. A unique index violation on user_id or
	// session_key is reported as shared.ErrAlreadyExists.
	Create(ctx context.Context, cart *Cart) error

	// Save updates the cart row (owner, session key, timestamps), not its items
	Save(ctx context.Context, cart *Cart) error

	// Delete deletes a cart and any remaining lines
	Delete(ctx context.Context, id uuid.UUID) error

	// FindItemForUpdate finds the line for productID and locks it for the
	// rest of the transaction
	FindItemForUpdate(ctx context.Context, cartID, productID uuid.UUID) (*CartItem, error)

	// CreateItem inserts a new line
	CreateItem(ctx context.Context, item *CartItem) error

	// SaveItem updates quantity and cart reference of an existing line
	SaveItem(ctx context.Context, item *CartItem) error

	// DeleteItem deletes a single line
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// DeleteItems deletes every line of a cart
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}
