package controllers

import (
	"github.com/krishi360/krishi/app/services"
	"github.com/krishi360/krishi/pkg/ctx"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(s *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: s}
}

// Index lists the caller's notifications; ?unread=true limits to unread ones.
func (n *NotificationController) Index(c *ctx.Context) {
	unread := c.QueryBool("unread")
	list, err := n.notifications.List(c.Context(), c.UserID(), unread != nil && *unread)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(list)
}

func (n *NotificationController) MarkRead(c *ctx.Context) {
	notificationID, ok := id(c)
	if !ok {
		return
	}
	if err := n.notifications.MarkRead(c.Context(), notificationID, c.UserID()); err != nil {
		fail(c, err)
		return
	}
	c.OK("Marked as read", nil)
}
