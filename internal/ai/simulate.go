package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"mets-backend/internal/models"
)

// DemoSource is the source of simulated answers when no provider was
// involved.
const DemoSource = "Demo AI"

const (
	minDemoDelay    = 800 * time.Millisecond
	demoDelaySpread = 700
)

type demoCategory struct {
	keywords []string
	reply    string
}

// Checked in order; the first category with a keyword in the prompt wins.
var demoCategories = []demoCategory{
	{
		keywords: []string{"üretim", "imalat"},
		reply:    "Demo: Üretim planı %95 tamamlanma oranına sahip. Kalan işler için tahmini süre 2 gün.",
	},
	{
		keywords: []string{"stok", "malzeme"},
		reply:    "Demo: Kritik stok seviyesindeki malzemeler: Röle X (10 adet kaldı), Kablo Y (25m kaldı). Siparişleri verildi.",
	},
	{
		keywords: []string{"sipariş", "satış"},
		reply:    "Demo: Son 24 saatte 5 yeni sipariş alındı. En büyük sipariş ABC firmasından (15 hücre).",
	},
	{
		keywords: []string{"merhaba", "selam"},
		reply:    "Demo: Merhaba! Size nasıl yardımcı olabilirim?",
	},
}

// Simulator produces canned answers. The text depends only on the prompt
// and the failure that led here; the delay depends only on the prompt.
type Simulator struct {
	// Delay returns the artificial latency for a prompt.
	Delay func(prompt string) time.Duration
	// Sleep waits for d or until ctx is done.
	Sleep func(ctx context.Context, d time.Duration)
}

// NewSimulator returns a simulator with the default latency of 800ms plus
// up to 700ms derived from the prompt.
func NewSimulator() *Simulator {
	return &Simulator{Delay: PromptDelay, Sleep: sleepCtx}
}

// NoDelaySimulator answers immediately.
func NoDelaySimulator() *Simulator {
	return &Simulator{
		Delay: func(string) time.Duration { return 0 },
		Sleep: func(context.Context, time.Duration) {},
	}
}

// PromptDelay maps a prompt to a delay in [800ms, 1500ms).
func PromptDelay(prompt string) time.Duration {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	return minDemoDelay + time.Duration(h.Sum32()%demoDelaySpread)*time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Respond builds the demo answer for prompt. source is DemoSource or the
// provider whose call failed; cause is that failure, if any.
func (s *Simulator) Respond(ctx context.Context, prompt, source string, cause error) models.ChatResponse {
	if s.Delay != nil && s.Sleep != nil {
		s.Sleep(ctx, s.Delay(prompt))
	}
	return models.ChatResponse{
		Text:    DemoText(prompt, source, cause),
		Success: false,
		Source:  source,
		IsDemo:  true,
	}
}

// DemoText selects the canned reply for prompt.
func DemoText(prompt, source string, cause error) string {
	if prompt == "" {
		if cause != nil {
			return fmt.Sprintf("API bağlantı sorunu (%s): %s. Geliştirici konsolunu kontrol edin. Demo yanıt üretiliyor.", source, cause.Error())
		}
		return "Üzgünüm, \"...\" ile ilgili isteğinizi işlerken bir sorun oluştu. Lütfen daha sonra tekrar deneyin."
	}

	p := strings.ToLower(prompt)
	for _, c := range demoCategories {
		for _, k := range c.keywords {
			if strings.Contains(p, k) {
				return c.reply
			}
		}
	}

	return fmt.Sprintf("Demo: \"%s...\" sorgunuz için genel bir demo yanıtı üretildi. Gerçek veri için lütfen API bağlantısını kontrol edin.", truncateRunes(prompt, 60))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
