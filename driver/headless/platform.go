package headless

import (
	"sync"

	"github.com/TheBitDrifter/snowflake/driver"
)

var (
	_ driver.Device   = (*Device)(nil)
	_ driver.Platform = (*Platform)(nil)
	_ driver.Surface  = (*Surface)(nil)
)

// Platform is a window that closes itself after a fixed number of input polls.
// A negative budget never closes.
type Platform struct {
	mu     sync.Mutex
	budget int
	polls  int
	alive  bool
	width  int
	height int
	title  string
}

func NewPlatform(width, height, budget int) *Platform {
	return &Platform{budget: budget, alive: true, width: width, height: height}
}

func (p *Platform) IsAlive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *Platform) PollInput() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.polls++
	if p.budget >= 0 && p.polls > p.budget {
		p.alive = false
	}
}

// Close marks the window closed.
func (p *Platform) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alive = false
}

func (p *Platform) Resize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.width, p.height = width, height
}

func (p *Platform) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.title = title
}

func (p *Platform) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.width, p.height
}

func (p *Platform) Title() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title
}

func (p *Platform) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}
