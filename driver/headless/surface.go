package headless

import (
	"sync"

	"github.com/TheBitDrifter/snowflake/driver"
)

// Surface cycles through a fixed number of swapchain images.
type Surface struct {
	mu     sync.Mutex
	images uint32
	next   uint32

	// StaleAcquires makes the next n acquires report driver.ErrOutOfDate.
	StaleAcquires int
	// StalePresents makes the next n presents report driver.ErrOutOfDate.
	StalePresents int
	FailAcquire   error
	FailPresent   error
	FailReinit    error

	reinits  int
	presents []uint32
}

func NewSurface(images uint32) *Surface {
	return &Surface{images: images}
}

func (s *Surface) AcquireNextImage() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAcquire != nil {
		return 0, s.FailAcquire
	}
	if s.StaleAcquires > 0 {
		s.StaleAcquires--
		return 0, driver.ErrOutOfDate
	}
	image := s.next
	s.next = (s.next + 1) % s.images
	return image, nil
}

func (s *Surface) Present(image uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPresent != nil {
		return s.FailPresent
	}
	if s.StalePresents > 0 {
		s.StalePresents--
		return driver.ErrOutOfDate
	}
	s.presents = append(s.presents, image)
	return nil
}

func (s *Surface) Reinitialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailReinit != nil {
		return s.FailReinit
	}
	s.reinits++
	s.next = 0
	return nil
}

func (s *Surface) Reinitializations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reinits
}

// Presented returns the images presented so far, in order.
func (s *Surface) Presented() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.presents...)
}
