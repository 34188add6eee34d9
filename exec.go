package icoforge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/icoforge/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the source files picked up when walking a directory.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".ico", ".webp"}

// Ops describes where the CLI reads from and writes to.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// Slice switches to sprite sheet mode: the source is cut into cells
	// and every cell is written into the Dst directory.
	Slice *SliceRequest
}

// result holds the outcome of processing a single source file.
type result struct {
	path, dst string
	err       error
}

// Execute runs the processor against the source described by op. The
// source can be a URL, a pipe, a regular file or a directory walked
// recursively by a pool of workers.
func (p *Processor) Execute(op *Ops) error {
	if p.Spinner == nil {
		msg := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ ICOFORGE", utils.StatusMessage),
			utils.DecorateText("⇢ rendering icon...", utils.DefaultMessage),
		)
		p.Spinner = utils.NewSpinner(msg, time.Millisecond*80, true)
	}

	// Capture CTRL-C signal and restore the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer close(signalChan)
	defer signal.Stop(signalChan)
	go func() {
		if _, ok := <-signalChan; ok {
			p.Spinner.RestoreCursor()
			os.Exit(1)
		}
	}()

	now := time.Now()
	var err error

	switch {
	case op.Slice != nil:
		err = op.spin(p, filepath.Base(op.Src), func() error { return op.slice(p) })
	case utils.IsValidUrl(op.Src) || op.Src == op.PipeName:
		err = op.spin(p, filepath.Base(op.Src), func() error { return op.process(p, op.Src, op.Dst) })
		op.printOpStatus(op.Dst, err)
	default:
		var fs os.FileInfo
		if fs, err = os.Stat(op.Src); err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		if fs.IsDir() {
			// Workers share one spinner, started once for the whole walk.
			err = op.spin(p, op.Src, func() error { return op.walk(p) })
		} else {
			err = op.spin(p, filepath.Base(op.Src), func() error { return op.process(p, op.Src, op.Dst) })
			op.printOpStatus(op.Dst, err)
		}
	}
	if err == nil {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return err
}

// walk processes recursively the image files from the source directory concurrently.
func (op *Ops) walk(p *Processor) error {
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	workers := op.Workers
	if workers <= 0 || workers > maxWorkers {
		workers = runtime.NumCPU()
	}

	var wg sync.WaitGroup
	ch := make(chan result)
	done := make(chan interface{})
	defer close(done)

	paths, errc := walkDir(done, op.Src, validExtensions)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			op.consumer(p, op.Dst, ch, done, paths)
		}()
	}

	// Close the channel after the values are consumed.
	go func() {
		defer close(ch)
		wg.Wait()
	}()

	var err error
	for res := range ch {
		if res.err != nil {
			err = errors.Join(err, fmt.Errorf("%s: %w", res.path, res.err))
			op.printOpStatus(res.path, res.err)
			continue
		}
		op.printOpStatus(res.dst, nil)
	}
	if werr := <-errc; werr != nil {
		err = errors.Join(err, werr)
	}
	return err
}

// consumer reads the path names from the paths channel and renders every source image.
func (op *Ops) consumer(
	p *Processor,
	dest string,
	res chan<- result,
	done <-chan interface{},
	paths <-chan string,
) {
	for src := range paths {
		name := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		dst := filepath.Join(dest, name+p.outputFormat("").Ext())
		err := op.process(p, src, dst)

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			dst:  dst,
			err:  err,
		}:
		}
	}
}

// process renders a single source into a single destination. It never
// touches the spinner, so any number of workers may run it at once.
func (op *Ops) process(p *Processor, in, out string) error {
	src, err := op.Open(in)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok && src != os.Stdin {
		defer c.Close()
	}

	// A local copy picks the format implied by the destination name
	// without racing other workers over the shared processor.
	proc := *p
	proc.Format = p.outputFormat(out)

	var buf bytes.Buffer
	if err := proc.Process(src, &buf); err != nil {
		return err
	}
	return op.writeOutput(out, buf.Bytes())
}

// spin runs fn while the processor's spinner shows what is being rendered.
func (op *Ops) spin(p *Processor, name string, fn func() error) error {
	p.Spinner.SetMessage(fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ ICOFORGE", utils.StatusMessage),
		utils.DecorateText("⇢ rendering "+name+"...", utils.DefaultMessage),
	))
	p.Spinner.Start()
	err := fn()
	if err != nil {
		p.Spinner.SetStopMsg(fmt.Sprintf("%s %s %s",
			utils.DecorateText("⚡ ICOFORGE", utils.StatusMessage),
			utils.DecorateText("rendering failed...", utils.DefaultMessage),
			utils.DecorateText("✘", utils.ErrorMessage),
		))
	} else {
		p.Spinner.SetStopMsg(fmt.Sprintf("%s %s %s",
			utils.DecorateText("⚡ ICOFORGE", utils.StatusMessage),
			utils.DecorateText("⇢", utils.DefaultMessage),
			utils.DecorateText("rendered successfully ✔", utils.SuccessMessage),
		))
	}
	p.Spinner.Stop()
	return err
}

// slice cuts the source sprite sheet and writes every cell into the destination directory.
func (op *Ops) slice(p *Processor) error {
	src, err := op.Open(op.Src)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok && src != os.Stdin {
		defer c.Close()
	}

	cells, err := p.Slice(src, *op.Slice)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(op.Dst, 0755); err != nil {
		return fmt.Errorf("unable to create the destination directory: %w", err)
	}

	format := p.outputFormat("")
	seen := make(map[string]int, len(cells))
	for _, cell := range cells {
		dst := filepath.Join(op.Dst, cellFileName(cell, seen)+format.Ext())
		var buf bytes.Buffer
		if err := EncodeImage(&buf, cell.Image, format, p.entry()); err != nil {
			return err
		}
		if err := op.writeOutput(dst, buf.Bytes()); err != nil {
			return err
		}
		op.printOpStatus(dst, nil)
	}
	return nil
}

// cellFileName reduces a cell label to a base name that stays inside the
// output directory. Unusable labels fall back to the generated placeholder
// and repeated names get a numeric suffix.
func cellFileName(cell Cell, seen map[string]int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, strings.TrimSpace(cell.Label))
	name = strings.Trim(name, ". ")
	if name == "" {
		name = CellLabel(nil, cell.Row, cell.Col, 0)
	}

	key := strings.ToLower(name)
	n := seen[key]
	seen[key] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n+1)
		seen[strings.ToLower(name)]++
	}
	return name
}

// Open converts the source path into a reader. URLs are downloaded
// into memory, the pipe name reads stdin.
func (op *Ops) Open(in string) (io.Reader, error) {
	if utils.IsValidUrl(in) {
		data, err := utils.DownloadImage(in)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, errors.New("`-` should be used with a pipe for stdin")
		}
		return os.Stdin, nil
	}
	src, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("unable to open the source file: %w", err)
	}
	return src, nil
}

// writeOutput writes the encoded icon to the destination file or to stdout.
func (op *Ops) writeOutput(out string, data []byte) error {
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("`-` should be used with a pipe for stdout")
		}
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("unable to create the destination file: %w", err)
	}
	return nil
}

// outputFormat picks the format implied by the destination extension,
// falling back to the processor's own format.
func (p *Processor) outputFormat(dst string) Format {
	if ext := filepath.Ext(dst); ext != "" {
		if f, err := ParseFormat(ext); err == nil {
			return f
		}
	}
	if p.Format == "" {
		return PNG
	}
	return p.Format
}

// printOpStatus displays the relevant information about the rendering process.
func (op *Ops) printOpStatus(fname string, err error) {
	if err != nil {
		log.Printf("%s%s",
			utils.DecorateText("\nError rendering the icon: "+filepath.Base(fname), utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err), utils.DefaultMessage),
		)
		return
	}
	if fname == op.PipeName {
		return
	}
	var size string
	if fi, err := os.Stat(fname); err == nil {
		size = "(" + utils.FormatBytes(int(fi.Size())) + ")"
	}
	fmt.Fprintf(os.Stderr, "\nThe icon has been saved as: %s %s%s\n",
		utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
		size,
		utils.DefaultColor,
	)
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan interface{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}
			if !isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				// Files without an extension are accepted when their content sniffs as an image.
				if filepath.Ext(f.Name()) != "" {
					return nil
				}
				if ctype, err := utils.DetectFileContentType(path); err != nil || !utils.IsImage(ctype) {
					return nil
				}
			}
			select {
			case <-done:
				return errors.New("directory walk cancelled")
			case pathChan <- path:
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	for _, ex := range extensions {
		if ex == ext {
			return true
		}
	}
	return false
}
