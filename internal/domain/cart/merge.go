package cart

// MergeResult lists the line changes produced by absorbing a guest cart.
// Increased lines already existed in the user cart; Moved lines were
// reassigned from the guest cart unchanged except for their cart reference.
type MergeResult struct {
	Increased []CartItem
	Moved     []CartItem
}

// Absorb folds the lines of guest into c. Quantities always add up, capped
// at MaxQuantity; when both carts hold the same product the user line keeps
// its own price snapshot.
// The guest cart is left empty and should be deleted by the caller in the
// same transaction.
func (c *Cart) Absorb(guest *Cart) (MergeResult, error) {
	var result MergeResult
	if guest == nil || guest.ID == c.ID {
		return result, nil
	}
	if c.IsAnonymous() {
		return result, ErrMergeTargetAnonymous
	}

	for _, guestItem := range guest.Items {
		if existing := c.FindItem(guestItem.ProductID); existing != nil {
			existing.absorb(guestItem.Quantity)
			result.Increased = append(result.Increased, *existing)
			continue
		}
		moved := guestItem
		moved.MoveTo(c.ID)
		c.Items = append(c.Items, moved)
		result.Moved = append(result.Moved, moved)
	}

	guest.Items = nil
	c.touch()
	return result, nil
}
