package view

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
)

// avatarColors — палитра аватаров; цвет выбирается по первому символу имени.
var avatarColors = []string{
	"bg-blue-500",
	"bg-green-500",
	"bg-purple-500",
	"bg-orange-500",
	"bg-pink-500",
	"bg-indigo-500",
	"bg-teal-500",
	"bg-red-500",
}

// Initials возвращает заглавные первые буквы первых двух слов.
func Initials(name string) string {
	initials := make([]rune, 0, 2)
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		initials = append(initials, unicode.ToUpper(r))
		if len(initials) == 2 {
			break
		}
	}
	return string(initials)
}

// AvatarColor выбирает цвет аватара по коду первого символа.
func AvatarColor(name string) string {
	r, _ := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return avatarColors[0]
	}
	return avatarColors[int(r)%len(avatarColors)]
}

// Percent возвращает округлённую долю part/total в процентах; 0 при total = 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// ProgressLabel форматирует прогресс проекта как есть, например "75%".
func ProgressLabel(progress int) string {
	return fmt.Sprintf("%d%%", progress)
}

// ProgressBar ограничивает прогресс диапазоном 0..100 для отрисовки полосы.
func ProgressBar(progress int) int {
	return min(max(progress, 0), 100)
}

// Relative форматирует время относительно now: "3 hours ago", "2 days from now".
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// Count форматирует количество с существительным в нужном числе: "1 project", "3 projects".
func Count(n int, singular, plural string) string {
	return english.Plural(n, singular, plural)
}
