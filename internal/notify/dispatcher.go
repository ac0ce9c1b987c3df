package notify

import (
	"log"

	"gorm.io/gorm"

	"github.com/motmatch/mot-marketplace/internal/models"
)

type Event struct {
	UserID uint
	Kind   string
	Data   map[string]any
}

// Dispatcher writes in-app notification rows and fans out email off the
// request path, same shape as the audit dispatcher: buffered channel, single
// worker, drop when full.
type Dispatcher struct {
	db     *gorm.DB
	mailer Mailer
	queue  chan Event
}

func NewDispatcher(db *gorm.DB, mailer Mailer) *Dispatcher {
	d := &Dispatcher{
		db:     db,
		mailer: mailer,
		queue:  make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if err := d.deliver(ev); err != nil {
			log.Println("notify error:", err)
		}
	}
}

func (d *Dispatcher) deliver(ev Event) error {
	title, body := Render(ev.Kind, ev.Data)

	n := models.Notification{
		UserID: ev.UserID,
		Kind:   ev.Kind,
		Title:  title,
		Body:   body,
	}
	if err := d.db.Create(&n).Error; err != nil {
		return err
	}

	var user models.User
	if err := d.db.First(&user, ev.UserID).Error; err != nil {
		return err
	}

	if user.Email != "" {
		if err := d.mailer.Send(user.Email, title, body); err != nil {
			log.Printf("mail send failed for user %d: %v", user.ID, err)
		}
	}

	return nil
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		log.Println("notify queue full, dropping event")
	}
}
