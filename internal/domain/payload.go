package domain

import "fmt"

// BuildPayload assembles the immutable notification snapshot from a joined
// wish context. Pure: no I/O, no mutation of its inputs, total for any
// well-formed context. Optional wish fields stay absent instead of erroring.
//
// The deep link back into the mini-app is derivable only when the owner has
// a public handle; its absence is a valid payload state.
func BuildPayload(wc *WishContext, botName string) Payload {
	p := Payload{
		WishID:      wc.Wish.ID,
		Title:       wc.Wish.Title,
		Description: copyString(wc.Wish.Description),
		URL:         copyString(wc.Wish.URL),
		Price:       copyString(wc.Wish.Price),
		Priority:    wc.Wish.Priority,
		Status:      wc.Wish.Status,
		ImageURL:    copyString(wc.Wish.ImageURL),
		Owner: PayloadOwner{
			ID:          wc.Owner.ID,
			DisplayName: wc.Owner.DisplayName,
			Username:    wc.Owner.Handle(),
		},
		Wishlist: PayloadWishlist{
			ID:         wc.Wishlist.ID,
			Title:      wc.Wishlist.Title,
			Visibility: wc.Wishlist.Visibility,
		},
	}

	if len(wc.Wish.Tags) > 0 {
		p.Tags = append([]string(nil), wc.Wish.Tags...)
	}

	if handle := wc.Owner.Handle(); handle != "" {
		link := fmt.Sprintf("https://t.me/%s?startapp=%s", botName, handle)
		p.DeepLink = &link
	}

	return p
}

// copyString detaches an optional field from the source entity so that
// later mutations of the entity cannot reach into the snapshot.
func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
