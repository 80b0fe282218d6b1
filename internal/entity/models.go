package entity

// All lists every model in migration order.
func All() []any {
	return []any{
		&Role{},
		&User{},
		&Profile{},
		&Follow{},
		&Category{},
		&Content{},
		&MediaAsset{},
		&Vote{},
		&Badge{},
		&UserBadge{},
		&Comment{},
		&CommentLike{},
		&Report{},
		&Notification{},
		&PointLog{},
	}
}
