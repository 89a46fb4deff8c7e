// Package notify fans notifications out to recipients.
//
// Dispatch is best-effort and at-most-once: a failure to resolve or to
// write a notification is logged and swallowed, never propagated to the
// operation that triggered it. Nothing here retries.
package notify

import (
	"context"
	"sync"

	"github.com/nibrashq/nibras/internal/app/system/metrics"
	"github.com/nibrashq/nibras/internal/app/system/timeouts"
	"github.com/nibrashq/nibras/internal/domain/models"
	"go.uber.org/zap"
)

// RecipientResolver resolves a token set to recipient uids.
type RecipientResolver interface {
	ResolveRecipients(ctx context.Context, tokens []string) ([]string, error)
}

// Writer persists one notification record.
type Writer interface {
	Insert(ctx context.Context, n models.Notification) error
}

// Dispatcher emits notification records for broadcasts and workflow
// transitions.
type Dispatcher struct {
	resolver RecipientResolver
	notifs   Writer
	log      *zap.Logger
}

func NewDispatcher(resolver RecipientResolver, notifs Writer, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{resolver: resolver, notifs: notifs, log: logger}
}

// FanOutBroadcast resolves the broadcast's audience tokens and writes one
// notification per recipient, each linking back to the announcements
// page. Writes are issued concurrently; one failing does not cancel the
// others, and the broadcast itself is already committed regardless.
func (d *Dispatcher) FanOutBroadcast(ctx context.Context, ann models.Announcement) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Long())
	defer cancel()

	uids, err := d.resolver.ResolveRecipients(ctx, ann.AudTokens)
	if err != nil {
		metrics.NotificationFailure(models.NotificationAnnouncement)
		d.log.Warn("broadcast audience resolution incomplete",
			zap.String("announcement_id", ann.ID.Hex()),
			zap.Error(err))
	}
	if len(uids) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, uid := range uids {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			// CreatedAt stays zero so the store stamps insert time; a late
			// fan-out then sorts by arrival in the inbox, like workflow
			// notifications do.
			n := models.Notification{
				UID:   uid,
				Title: "New announcement",
				Body:  ann.Title,
				Type:  models.NotificationAnnouncement,
				Link:  "/announcements",
				AnnID: ann.ID.Hex(),
			}
			if err := d.notifs.Insert(ctx, n); err != nil {
				metrics.NotificationFailure(models.NotificationAnnouncement)
				d.log.Warn("broadcast notification write failed",
					zap.String("uid", uid),
					zap.String("announcement_id", ann.ID.Hex()),
					zap.Error(err))
				return
			}
			metrics.NotificationEmitted(models.NotificationAnnouncement)
		}(uid)
	}
	wg.Wait()

	d.log.Info("broadcast fan-out complete",
		zap.String("announcement_id", ann.ID.Hex()),
		zap.Int("recipients", len(uids)))
}

// NotifyWorkflowTransition notifies the parties affected by a request
// action. This is direct addressing, not audience-token resolution: a
// submission or forward notifies the new assignee (by uid when known, otherwise every
// holder of the target role); approve/reject/close notify the original
// creator.
func (d *Dispatcher) NotifyWorkflowTransition(ctx context.Context, req *models.InternalRequest, action models.RequestAction) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeouts.Long())
	defer cancel()

	var (
		uids  []string
		title string
	)

	switch action.ActionType {
	case models.ActionSubmitted, models.ActionForwarded:
		title = "A request was forwarded to you"
		if action.ActionType == models.ActionSubmitted {
			title = "A new request was submitted to you"
		}
		if action.ToUID != "" {
			uids = []string{action.ToUID}
		} else if action.ToRole != "" {
			resolved, err := d.resolver.ResolveRecipients(ctx, []string{"role:" + action.ToRole})
			if err != nil {
				metrics.NotificationFailure(models.NotificationInternalRequest)
				d.log.Warn("forward target resolution incomplete",
					zap.String("request_id", req.ID.Hex()),
					zap.String("role", action.ToRole),
					zap.Error(err))
			}
			uids = resolved
		}
	case models.ActionApproved:
		title = "Your request was approved"
		uids = []string{req.CreatedByUID}
	case models.ActionRejected:
		title = "Your request was rejected"
		uids = []string{req.CreatedByUID}
	case models.ActionClosed:
		title = "Your request was closed"
		uids = []string{req.CreatedByUID}
	default:
		// Comments and PDF generation are visible on the timeline; no
		// notification is sent for them.
		return
	}

	for _, uid := range uids {
		if uid == "" || uid == action.FromUID {
			continue
		}
		n := models.Notification{
			UID:       uid,
			Title:     title,
			Body:      req.Title,
			Type:      models.NotificationInternalRequest,
			Link:      "/requests/" + req.ID.Hex(),
			RequestID: req.ID.Hex(),
		}
		if err := d.notifs.Insert(ctx, n); err != nil {
			metrics.NotificationFailure(models.NotificationInternalRequest)
			d.log.Warn("workflow notification write failed",
				zap.String("uid", uid),
				zap.String("request_id", req.ID.Hex()),
				zap.Error(err))
			continue
		}
		metrics.NotificationEmitted(models.NotificationInternalRequest)
	}
}
