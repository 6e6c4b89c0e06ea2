package host

import (
	"fmt"
	"sync"

	"github.com/veildesk/veildesk/pkg/overlay/event"
)

// SimPage is a scripted, in-memory host page.  Tests and the demo daemon use
// it to play out navigation, container swaps, and row mutations without a
// live document.
type SimPage struct {
	sync.Mutex
	location  string
	container *SimContainer
	notify    chan struct{}
	nextID    int
}

// NewSimPage constructs a SimPage with no container; the host has not
// rendered yet.
func NewSimPage(location string) *SimPage {
	return &SimPage{
		location: location,
		notify:   make(chan struct{}, 1),
	}
}

// Location implements Page.
func (p *SimPage) Location() string {
	p.Lock()
	defer p.Unlock()
	return p.location
}

// PrimaryContainer implements Page.
func (p *SimPage) PrimaryContainer() (event.ContainerRef, bool) {
	p.Lock()
	defer p.Unlock()
	if p.container == nil {
		return nil, false
	}
	return p.container, true
}

// Notify implements Page.
func (p *SimPage) Notify() <-chan struct{} {
	return p.notify
}

// Navigate changes the location descriptor and pings observers.
func (p *SimPage) Navigate(location string) {
	p.Lock()
	p.location = location
	p.Unlock()
	p.ping()
}

// ReplaceContainer installs a fresh primary container holding the given rows,
// simulating a wholesale view swap by the host.
func (p *SimPage) ReplaceContainer(rows ...string) *SimContainer {
	p.Lock()
	p.nextID++
	c := &SimContainer{identity: fmt.Sprintf("container-%d", p.nextID)}
	c.rows = append(c.rows, rows...)
	p.container = c
	p.Unlock()
	p.ping()
	return c
}

// RemoveContainer drops the primary container, as when the host tears down
// its view during navigation.
func (p *SimPage) RemoveContainer() {
	p.Lock()
	p.container = nil
	p.Unlock()
	p.ping()
}

// SetRows mutates the current container's row markup in place.  No-op when
// the container is absent.
func (p *SimPage) SetRows(rows ...string) {
	p.Lock()
	if p.container != nil {
		p.container.setRows(rows)
	}
	p.Unlock()
	p.ping()
}

// ping coalesces mutation notifications.
func (p *SimPage) ping() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// SimContainer is the scripted primary container.
type SimContainer struct {
	sync.Mutex
	identity string
	rows     []string
}

// Identity implements event.ContainerRef.
func (c *SimContainer) Identity() string {
	return c.identity
}

// Rows implements event.ContainerRef.
func (c *SimContainer) Rows() []string {
	c.Lock()
	defer c.Unlock()
	rows := make([]string, len(c.rows))
	copy(rows, c.rows)
	return rows
}

func (c *SimContainer) setRows(rows []string) {
	c.Lock()
	defer c.Unlock()
	c.rows = append(c.rows[:0:0], rows...)
}
