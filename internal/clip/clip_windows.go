//go:build windows

package clip

// #cgo LDFLAGS: -luser32
//
// #include <windows.h>
//
// static LRESULT CALLBACK clipview_wnd_proc(HWND hwnd, UINT msg, WPARAM wp, LPARAM lp) {
//     if (msg == WM_CLIPBOARDUPDATE) {
//         PostMessage(hwnd, WM_USER + 1, 0, 0);
//         return 0;
//     }
//     return DefWindowProc(hwnd, msg, wp, lp);
// }
//
// static HWND clipview_listener() {
//     WNDCLASS wc = {0};
//     wc.lpfnWndProc   = clipview_wnd_proc;
//     wc.hInstance     = GetModuleHandle(NULL);
//     wc.lpszClassName = "ClipviewListener";
//     RegisterClass(&wc);
//     HWND hwnd = CreateWindowEx(0, "ClipviewListener", NULL, 0,
//         0, 0, 0, 0, HWND_MESSAGE, NULL, GetModuleHandle(NULL), NULL);
//     AddClipboardFormatListener(hwnd);
//     return hwnd;
// }
//
// static int clipview_drain(HWND hwnd) {
//     MSG msg;
//     int changed = 0;
//     while (PeekMessage(&msg, hwnd, 0, 0, PM_REMOVE)) {
//         if (msg.message == WM_USER + 1) { changed = 1; }
//         TranslateMessage(&msg);
//         DispatchMessage(&msg);
//     }
//     return changed;
// }
import "C"

import (
	"log/slog"
	"runtime"
	"time"

	"golang.design/x/clipboard"
)

type windowsBackend struct {
	watchCh chan struct{}
	done    chan struct{}
}

// New returns the Windows clipboard backend, driven by
// AddClipboardFormatListener notifications.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, using in-memory clipboard", "err", err)
		return NewMemory()
	}
	b := &windowsBackend{
		watchCh: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go b.pump()
	return b
}

func (b *windowsBackend) Name() string { return "Windows clipboard" }

// pump owns the listener window; window messages are delivered to the
// creating thread only.
func (b *windowsBackend) pump() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	hwnd := C.clipview_listener()

	t := time.NewTicker(50 * time.Millisecond)
	defer t.Stop()
	defer close(b.watchCh)
	for {
		select {
		case <-b.done:
			return
		case <-t.C:
			if C.clipview_drain(hwnd) != 0 {
				notify(b.watchCh)
			}
		}
	}
}

func (b *windowsBackend) Read() (Contents, error) { return readSystem(), nil }

func (b *windowsBackend) Write(c Contents) error {
	writeSystem(c)
	return nil
}

func (b *windowsBackend) Watch() <-chan struct{} { return b.watchCh }
func (b *windowsBackend) Close()                 { close(b.done) }
