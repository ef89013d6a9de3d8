package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// File — долговечное хранилище в JSON-файле: переживает перезапуск CLI,
// как localStorage переживает перезагрузку страницы.
//
// Один файл соответствует одному источнику (origin) бэкенда, см. FileForOrigin.
// Запись атомарна: временный файл + rename.
type File struct {
	mu   sync.Mutex
	path string
}

// NewFile создаёт хранилище поверх файла path. Файл создаётся при первой записи.
func NewFile(path string) *File {
	return &File{path: path}
}

// FileForOrigin возвращает хранилище для origin базового URL
// в каталоге dir: <dir>/<scheme>_<host>_<port>.json.
func FileForOrigin(dir, baseURL string) (*File, error) {
	const op = "tokens.FileForOrigin"

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%s: invalid base url %q", op, baseURL)
	}

	name := strings.NewReplacer(":", "_", "/", "_", "[", "", "]", "").Replace(u.Scheme + "_" + u.Host)

	return NewFile(filepath.Join(dir, name+".json")), nil
}

// Path — путь к файлу хранилища.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, name string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", false, err
	}

	v, ok := data[name]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}

	if value == "" {
		delete(data, name)
	} else {
		data[name] = value
	}

	return f.write(data)
}

func (f *File) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("tokens.File.Clear: %w", err)
	}

	return nil
}

func (f *File) read() (map[string]string, error) {
	const op = "tokens.File.read"

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data := make(map[string]string)
	if len(b) == 0 {
		return data, nil
	}

	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", op, f.path, err)
	}

	return data, nil
}

func (f *File) write(data map[string]string) error {
	const op = "tokens.File.write"

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("%s: mkdir: %w", op, err)
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tokens-*")
	if err != nil {
		return fmt.Errorf("%s: temp: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%s: chmod: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: close: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("%s: rename: %w", op, err)
	}

	return nil
}
