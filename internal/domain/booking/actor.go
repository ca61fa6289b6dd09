package booking

// Actor is the authenticated caller of a booking operation.
type Actor struct {
	ID    string
	Admin bool
}

// CanView reports whether the actor may read the booking.
func (a Actor) CanView(b *Booking) bool {
	return a.Admin || (b != nil && a.ID != "" && b.UserID == a.ID)
}

// mayRequest reports whether the actor's role may move a booking into target.
// Owners may only cancel; every other lifecycle step is an admin action.
func (a Actor) mayRequest(target Status) bool {
	if a.Admin {
		return true
	}
	return target == StatusCancelled
}
