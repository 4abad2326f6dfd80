// Package content reads the site's page tree from disk.
//
// A page is a directory below the content root. Its content file is
// <template>.md on single-language sites and <template>.<lang>.md otherwise;
// every other regular file in the directory is an attachment.
package content

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"git.home.luguber.info/inful/staticbuilder/internal/export"
	"git.home.luguber.info/inful/staticbuilder/internal/frontmatter"
)

// HomeDir is the top-level directory holding the home page.
const HomeDir = "home"

const contentExt = ".md"

var orderPrefix = regexp.MustCompile(`^[0-9]+-`)

// Store implements export.ContentStore over a content directory.
type Store struct {
	fs          afero.Fs
	root        string
	projectRoot string
	langs       []string
	defaultLang string

	mu   sync.Mutex
	dirs map[string]string // uri -> directory
}

var _ export.ContentStore = (*Store)(nil)

// NewStore returns a store reading root. langs lists language codes in
// order; defaultLang must be one of them. Without languages the site is
// single-language.
func NewStore(fs afero.Fs, root, projectRoot string, langs []string, defaultLang string) (*Store, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory %s is not a directory", root)
	}
	if len(langs) > 0 && defaultLang == "" {
		defaultLang = langs[0]
	}
	return &Store{
		fs:          fs,
		root:        root,
		projectRoot: projectRoot,
		langs:       langs,
		defaultLang: defaultLang,
	}, nil
}

// Languages returns the configured language codes.
func (s *Store) Languages() []string {
	if len(s.langs) == 0 {
		return nil
	}
	out := make([]string, len(s.langs))
	copy(out, s.langs)
	return out
}

// Index rescans the content directory and returns page URIs depth-first,
// siblings sorted by directory name.
func (s *Store) Index() ([]string, error) {
	dirs := map[string]string{}
	var uris []string
	if err := s.scan(s.root, "", dirs, &uris); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.dirs = dirs
	s.mu.Unlock()
	return uris, nil
}

func (s *Store) scan(dir, parent string, dirs map[string]string, uris *[]string) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") || strings.HasPrefix(e.Name(), "_") {
			continue
		}
		segment := orderPrefix.ReplaceAllString(e.Name(), "")
		if segment == "" {
			continue
		}
		uri := segment
		if parent != "" {
			uri = parent + "/" + segment
		}
		full := filepath.Join(dir, e.Name())
		if _, dup := dirs[uri]; !dup {
			dirs[uri] = full
			*uris = append(*uris, uri)
		}
		if err := s.scan(full, uri, dirs, uris); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) dir(uri string) (string, error) {
	uri = strings.Trim(uri, "/")
	s.mu.Lock()
	loaded := s.dirs != nil
	dir, ok := s.dirs[uri]
	s.mu.Unlock()
	if !loaded {
		if _, err := s.Index(); err != nil {
			return "", err
		}
		s.mu.Lock()
		dir, ok = s.dirs[uri]
		s.mu.Unlock()
	}
	if !ok {
		return "", fmt.Errorf("unknown page %q", uri)
	}
	return dir, nil
}

// URL returns the site-relative URL of uri in lang.
func (s *Store) URL(uri, lang string) string {
	uri = strings.Trim(uri, "/")
	p := "/"
	if uri != HomeDir && uri != "" {
		p = "/" + uri + "/"
	}
	if lang != "" && lang != s.defaultLang {
		p = "/" + lang + p
	}
	return p
}

// contentFile locates the content file of dir for lang. It returns the
// template of any content file when none exists for lang.
func (s *Store) contentFile(dir, lang string) (file, template string, info os.FileInfo, err error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return "", "", nil, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), contentExt) {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), contentExt)
		tmpl, code := stem, ""
		if len(s.langs) > 0 {
			i := strings.LastIndex(stem, ".")
			if i <= 0 || !s.known(stem[i+1:]) {
				continue
			}
			tmpl, code = stem[:i], stem[i+1:]
		}
		if template == "" {
			template = tmpl
		}
		if code == lang {
			return filepath.Join(dir, e.Name()), tmpl, e, nil
		}
	}
	if template == "" {
		template = "default"
	}
	return "", template, nil, nil
}

func (s *Store) known(code string) bool {
	for _, l := range s.langs {
		if l == code {
			return true
		}
	}
	return false
}

// Page returns the descriptor of uri in lang.
func (s *Store) Page(uri, lang string) (*export.Page, error) {
	dir, err := s.dir(uri)
	if err != nil {
		return nil, err
	}
	uri = strings.Trim(uri, "/")
	file, template, info, err := s.contentFile(dir, lang)
	if err != nil {
		return nil, err
	}

	page := &export.Page{
		URI:      uri,
		Lang:     lang,
		URL:      s.URL(uri, lang),
		Title:    path.Base(uri),
		Template: template,
	}
	if file == "" {
		return page, nil
	}
	doc, err := s.read(file)
	if err != nil {
		return nil, err
	}
	if title := doc.String("title"); title != "" {
		page.Title = title
	}
	page.Source = s.relative(file)
	page.Exists = true
	page.Modified = info.ModTime()
	return page, nil
}

// Document returns the parsed content file of page.
func (s *Store) Document(page *export.Page) (frontmatter.Document, error) {
	dir, err := s.dir(page.URI)
	if err != nil {
		return frontmatter.Document{}, err
	}
	file, _, _, err := s.contentFile(dir, page.Lang)
	if err != nil {
		return frontmatter.Document{}, err
	}
	if file == "" {
		return frontmatter.Document{}, fmt.Errorf("page %q has no content file for language %q", page.URI, page.Lang)
	}
	return s.read(file)
}

func (s *Store) read(file string) (frontmatter.Document, error) {
	data, err := afero.ReadFile(s.fs, file)
	if err != nil {
		return frontmatter.Document{}, err
	}
	doc, err := frontmatter.Parse(data)
	if err != nil {
		return frontmatter.Document{}, fmt.Errorf("%s: %w", s.relative(file), err)
	}
	return doc, nil
}

// Attachments lists the non-content files of the page directory by name.
func (s *Store) Attachments(page *export.Page) ([]export.Attachment, error) {
	dir, err := s.dir(page.URI)
	if err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, err
	}
	var out []export.Attachment
	for _, e := range entries {
		if !e.Mode().IsRegular() || strings.HasSuffix(e.Name(), contentExt) || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, export.Attachment{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) relative(file string) string {
	if s.projectRoot == "" {
		return filepath.ToSlash(file)
	}
	rel, err := filepath.Rel(s.projectRoot, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(file)
	}
	return filepath.ToSlash(rel)
}
