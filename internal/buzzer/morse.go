package buzzer

import (
	"strings"
	"time"
)

const (
	Dot       = 100 * time.Millisecond
	Dash      = 300 * time.Millisecond
	SymbolGap = 100 * time.Millisecond
	LetterGap = 300 * time.Millisecond
	WordGap   = 700 * time.Millisecond
)

var morseTable = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..", '0': "-----", '1': ".----", '2': "..---",
	'3': "...--", '4': "....-", '5': ".....", '6': "-....", '7': "--...",
	'8': "---..", '9': "----.",
}

// Encode turns a message into buzzer pulses. Characters without a morse
// code are skipped.
func Encode(message string) []Pulse {
	pulses := make([]Pulse, 0, len(message)*8)
	for _, char := range strings.ToUpper(message) {
		if char == ' ' {
			pulses = append(pulses, Pulse{On: false, Duration: WordGap})
			continue
		}

		code, ok := morseTable[char]
		if !ok {
			continue
		}
		for _, symbol := range code {
			if symbol == '.' {
				pulses = append(pulses, Pulse{On: true, Duration: Dot})
			} else {
				pulses = append(pulses, Pulse{On: true, Duration: Dash})
			}
			pulses = append(pulses, Pulse{On: false, Duration: SymbolGap})
		}
		pulses = append(pulses, Pulse{On: false, Duration: LetterGap})
	}
	return pulses
}
