package ui

import (
	"sync"

	"github.com/eiannone/keyboard"
)

// Singleton buffered channel and one reader goroutine to avoid multiple opens
// and to make DrainKeys non-blocking.
var (
	keyCh     chan rune
	startOnce sync.Once
)

// arrowRunes folds arrow keys into the h/j/k/l runes ActionFor understands.
var arrowRunes = map[keyboard.Key]rune{
	keyboard.KeyArrowLeft:  'h',
	keyboard.KeyArrowDown:  'j',
	keyboard.KeyArrowUp:    'k',
	keyboard.KeyArrowRight: 'l',
	keyboard.KeyEsc:        27,
	keyboard.KeyCtrlC:      'q',
}

// StartKeyEvents returns a channel that emits single-key runes read without
// Enter. The first call starts the background reader. If the keyboard
// cannot be opened the returned channel never emits.
func StartKeyEvents() chan rune {
	startOnce.Do(func() {
		keyCh = make(chan rune, 64)
		if err := keyboard.Open(); err != nil {
			return
		}
		go func() {
			defer keyboard.Close()
			for {
				char, key, err := keyboard.GetKey()
				if err != nil {
					close(keyCh)
					return
				}
				r := char
				if key != 0 {
					var ok bool
					if r, ok = arrowRunes[key]; !ok {
						continue
					}
				}
				// Drop events if nobody is consuming.
				select {
				case keyCh <- r:
				default:
				}
			}
		}()
	})
	return keyCh
}

// DrainKeys consumes any immediately available keys to avoid accidental
// triggers.
func DrainKeys() {
	ch := StartKeyEvents()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
