package session

import (
	"github.com/chromedp/chromedp"
)

// allocatorOptions builds the Chrome launch flags. The window is shown unless
// headless is configured, since the user signs in by hand.
func (s *Session) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", s.cfg.Headless),
		chromedp.DisableGPU,
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("enable-logging", false),
	)

	if s.cfg.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	if s.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ExecPath))
	}
	if s.cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(s.cfg.UserDataDir))
	}
	if s.cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.cfg.UserAgent))
	}
	if s.cfg.WindowWidth > 0 && s.cfg.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(s.cfg.WindowWidth, s.cfg.WindowHeight))
	}
	return opts
}
