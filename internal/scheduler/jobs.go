package scheduler

import (
	"context"

	contentService "anoa.com/realorai/internal/modules/content/service"
	notifService "anoa.com/realorai/internal/modules/notification/service"
	view "anoa.com/realorai/internal/modules/view/service"
)

type recycleJob struct {
	contents contentService.ContentService
	schedule string
}

// NewRecycleJob resurfaces stale revealed content.
func NewRecycleJob(contents contentService.ContentService, schedule string) Job {
	return &recycleJob{contents: contents, schedule: schedule}
}

func (j *recycleJob) Name() string     { return "content-recycle" }
func (j *recycleJob) Schedule() string { return j.schedule }

func (j *recycleJob) Run(ctx context.Context) error {
	_, err := j.contents.RecycleStale(ctx)
	return err
}

type mediaCleanupJob struct {
	contents contentService.ContentService
	schedule string
}

// NewMediaCleanupJob removes stored media that never became content.
func NewMediaCleanupJob(contents contentService.ContentService, schedule string) Job {
	return &mediaCleanupJob{contents: contents, schedule: schedule}
}

func (j *mediaCleanupJob) Name() string     { return "media-cleanup" }
func (j *mediaCleanupJob) Schedule() string { return j.schedule }

func (j *mediaCleanupJob) Run(ctx context.Context) error {
	_, err := j.contents.CleanupOrphanMedia(ctx)
	return err
}

type viewSyncJob struct {
	views    view.ViewService
	schedule string
}

// NewViewSyncJob flushes buffered view counters.
func NewViewSyncJob(views view.ViewService, schedule string) Job {
	return &viewSyncJob{views: views, schedule: schedule}
}

func (j *viewSyncJob) Name() string     { return "view-sync" }
func (j *viewSyncJob) Schedule() string { return j.schedule }

func (j *viewSyncJob) Run(ctx context.Context) error {
	_, err := j.views.Sync(ctx)
	return err
}

type notificationPruneJob struct {
	notifications notifService.NotificationService
	schedule      string
}

// NewNotificationPruneJob deletes old read notifications.
func NewNotificationPruneJob(notifications notifService.NotificationService, schedule string) Job {
	return &notificationPruneJob{notifications: notifications, schedule: schedule}
}

func (j *notificationPruneJob) Name() string     { return "notification-prune" }
func (j *notificationPruneJob) Schedule() string { return j.schedule }

func (j *notificationPruneJob) Run(ctx context.Context) error {
	_, err := j.notifications.Prune(ctx)
	return err
}
