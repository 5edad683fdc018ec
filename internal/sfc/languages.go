package sfc

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	ts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Script languages, as they appear in a <script lang="..."> attribute.
const (
	LangTS  = "ts"
	LangTSX = "tsx"
	LangJS  = "js"
	LangJSX = "jsx"
)

// extToLang maps script file extensions to script languages.
var extToLang = map[string]string{
	".ts":  LangTS,
	".mts": LangTS,
	".cts": LangTS,
	".tsx": LangTSX,
	".js":  LangJS,
	".mjs": LangJS,
	".cjs": LangJS,
	".jsx": LangJSX,
}

// langToGrammar maps script languages to tree-sitter grammars.
// Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	htmlGrammar   *sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			LangTS:  ts.GetLanguage(),
			LangTSX: tsx.GetLanguage(),
			LangJS:  javascript.GetLanguage(),
			LangJSX: javascript.GetLanguage(),
		}
		htmlGrammar = html.GetLanguage()
	})
}

// LanguageForFile returns the script language for a plain script file.
// Returns ("", false) if the extension is not a script extension.
func LanguageForFile(path string) (string, bool) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".d.ts") {
		return LangTS, true
	}
	lang, ok := extToLang[filepath.Ext(lower)]
	return lang, ok
}

// ScriptGrammar returns the grammar for a script language. An empty lang
// means plain JavaScript, as in a <script> block without a lang attribute.
func ScriptGrammar(lang string) (*sitter.Language, bool) {
	initGrammars()
	if lang == "" {
		lang = LangJS
	}
	l, ok := langToGrammar[strings.ToLower(lang)]
	return l, ok
}

// HTMLGrammar returns the grammar used for component files.
func HTMLGrammar() *sitter.Language {
	initGrammars()
	return htmlGrammar
}

// scriptExt returns the virtual file extension for a script language.
func scriptExt(lang string) string {
	switch strings.ToLower(lang) {
	case LangTS:
		return ".ts"
	case LangTSX:
		return ".tsx"
	case LangJSX:
		return ".jsx"
	default:
		return ".js"
	}
}
