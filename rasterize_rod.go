package statcard

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"

	"github.com/alnah/go-statcard/internal/fileutil"
	"github.com/alnah/go-statcard/internal/process"
)

// fontsReadyJS resolves once every web font used by the page has loaded or failed.
const fontsReadyJS = `() => document.fonts.ready.then(() => true)`

// rodRasterizer implements Rasterizer using go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodRasterizer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	timeout  time.Duration
	logger   zerolog.Logger
}

// newRodRasterizer creates a rodRasterizer with the given page load timeout.
func newRodRasterizer(timeout time.Duration, logger zerolog.Logger) *rodRasterizer {
	return &rodRasterizer{timeout: timeout, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRasterizer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.launcher = l
	r.browser = browser
	r.logger.Debug().Int("pid", l.PID()).Msg("browser launched")
	return browser, nil
}

// Close releases browser resources and kills the browser process tree.
func (r *rodRasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		if err := process.KillProcessGroup(r.launcher.PID()); err != nil {
			r.logger.Debug().Err(err).Msg("killing browser process group")
		}
		r.launcher.Kill()
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// Capabilities reads the browser user agent over the DevTools protocol.
func (r *rodRasterizer) Capabilities(ctx context.Context) (Capabilities, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return Capabilities{}, err
	}
	v, err := browser.Context(ctx).Version()
	if err != nil {
		return Capabilities{}, fmt.Errorf("%w: reading version: %v", ErrBrowserConnect, err)
	}
	return Capabilities{NeedsFontEmbedding: engineNeedsFontEmbedding(v.UserAgent)}, nil
}

// engineNeedsFontEmbedding reports whether the user agent belongs to a
// WebKit-only engine. Those skip external font URLs when capturing.
func engineNeedsFontEmbedding(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	if !strings.Contains(ua, "safari") {
		return false
	}
	return !strings.Contains(ua, "chrome") && !strings.Contains(ua, "chromium") && !strings.Contains(ua, "android")
}

// Rasterize opens the capture page in headless Chrome and takes a JPEG
// screenshot of the layout viewport at the requested pixel ratio.
func (r *rodRasterizer) Rasterize(ctx context.Context, req RasterRequest) ([]byte, error) {
	// Check context before starting
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(req.HTML, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()

	// Page load timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	page = page.Context(ctx).Timeout(timeout)

	if req.SkipFonts {
		router := page.HijackRequests()
		if err := router.Add("*", proto.NetworkResourceTypeFont, func(h *rod.Hijack) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		}); err != nil {
			return nil, fmt.Errorf("%w: blocking fonts: %v", ErrPageLoad, err)
		}
		go router.Run()
		defer func() { _ = router.Stop() }()
	}

	w, h := layoutSize(req.Width, req.Height, req.PixelRatio)
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             int(math.Ceil(w)),
		Height:            int(math.Ceil(h)),
		DeviceScaleFactor: req.PixelRatio,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := page.Navigate("file://" + tmpPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if !req.SkipFonts {
		if _, err := page.Evaluate(rod.Eval(fontsReadyJS).ByPromise()); err != nil {
			return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
		}
	}

	// Check context after page load
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quality := req.Quality
	shot, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
		Clip: &proto.PageViewport{
			Width:  w,
			Height: h,
			Scale:  1,
		},
		FromSurface: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScreenshot, err)
	}
	return shot, nil
}
