package cart

// Notification kinds published after a successful store write.
const (
	EventItemAdded       = "CartItemAdded"
	EventItemUpdated     = "CartItemUpdated"
	EventItemRemoved     = "CartItemRemoved"
	EventCartCleared     = "CartCleared"
	EventItemSaved       = "CartItemSavedForLater"
	EventItemMovedToCart = "SavedItemMovedToCart"
	EventSavedRemoved    = "SavedItemRemoved"
	EventPromoApplied    = "PromoApplied"
	EventPromoRemoved    = "PromoRemoved"
	EventProductViewed   = "ProductViewed"
)
