package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Lexer Errors (G001-G099)
	// ============================================

	"G001": {
		Category: CategoryLex,
		Message:  "Unexpected character",
		Detail:   "The lexer found a character that is not part of any token in this section's vocabulary.",
		DocURL:   "https://glyph.dev/docs/errors/G001",
	},
	"G002": {
		Category: CategoryLex,
		Message:  "Unterminated string literal",
		Detail:   "A string literal was opened with \" but never closed before the end of the line.",
		DocURL:   "https://glyph.dev/docs/errors/G002",
	},
	"G003": {
		Category: CategoryLex,
		Message:  "Unterminated interpolation",
		Detail:   "A { opened a template interpolation but no matching } was found.",
		DocURL:   "https://glyph.dev/docs/errors/G003",
	},

	// ============================================
	// Parse Errors (G100-G199)
	// ============================================

	"G100": {
		Category: CategoryParse,
		Message:  "Unexpected token",
		Detail:   "The token stream does not match the grammar at this point. Compilation is single-shot: the first structural violation aborts the parse.",
		DocURL:   "https://glyph.dev/docs/errors/G100",
	},
	"G101": {
		Category: CategoryParse,
		Message:  "Missing section closing tag",
		Detail:   "A <template>, <style> or <script> block was opened but its closing tag was never found.",
		DocURL:   "https://glyph.dev/docs/errors/G101",
	},
	"G102": {
		Category: CategoryParse,
		Message:  "Duplicate section",
		Detail:   "A component file may contain at most one <template>, one <style> and one <script> block.",
		DocURL:   "https://glyph.dev/docs/errors/G102",
	},
	"G103": {
		Category: CategoryParse,
		Message:  "Expected a section block",
		Detail:   "Top level of a component file may only contain <template>, <style> and <script> blocks.",
		DocURL:   "https://glyph.dev/docs/errors/G103",
	},
	"G104": {
		Category: CategoryParse,
		Message:  "Mismatched closing tag",
		Detail:   "A closing tag does not match the most recently opened element.",
		DocURL:   "https://glyph.dev/docs/errors/G104",
	},

	// ============================================
	// Type Errors (G200-G299)
	// ============================================

	"G200": {
		Category: CategoryType,
		Message:  "Unknown type",
		Detail:   "A type annotation refers to a type that is neither a primitive nor declared in this file.",
		DocURL:   "https://glyph.dev/docs/errors/G200",
	},
	"G201": {
		Category: CategoryType,
		Message:  "Duplicate declaration",
		Detail:   "Each type, enum and function name must be unique within a component file.",
		DocURL:   "https://glyph.dev/docs/errors/G201",
	},
	"G202": {
		Category: CategoryType,
		Message:  "Type mismatch",
		Detail:   "An expression's inferred type does not match the type the surrounding context requires.",
		DocURL:   "https://glyph.dev/docs/errors/G202",
	},
	"G203": {
		Category: CategoryType,
		Message:  "Non-exhaustive match",
		Detail:   "The arms of this match do not cover every constructor of the scrutinee's type. Reads of optional values must handle both Some and None.",
		DocURL:   "https://glyph.dev/docs/errors/G203",
	},
	"G204": {
		Category: CategoryType,
		Message:  "Invalid entry point signature",
		Detail:   "init must have shape init(attrs) -> Model and update must have shape update(msg: Msg, model: Model) -> Model. The runtime depends on these contracts.",
		DocURL:   "https://glyph.dev/docs/errors/G204",
	},
	"G205": {
		Category: CategoryType,
		Message:  "Unknown identifier",
		Detail:   "A name is used that is not a parameter, declared function, or declared constructor in scope.",
		DocURL:   "https://glyph.dev/docs/errors/G205",
	},
	"G206": {
		Category: CategoryType,
		Message:  "Unknown field",
		Detail:   "The record's declaration has no field with this name.",
		DocURL:   "https://glyph.dev/docs/errors/G206",
	},
	"G207": {
		Category: CategoryType,
		Message:  "Unknown message constructor",
		Detail:   "An event binding names a variant that the Msg enum does not declare. Bindings are resolved statically; there is no runtime lookup to fall back to.",
		DocURL:   "https://glyph.dev/docs/errors/G207",
	},
	"G208": {
		Category: CategoryType,
		Message:  "Optional value rendered without a match",
		Detail:   "A template expression produces a Maybe value. Interpolations must render a concrete value: match on the option so the None case is handled.",
		DocURL:   "https://glyph.dev/docs/errors/G208",
	},
	"G209": {
		Category: CategoryType,
		Message:  "Missing entry point",
		Detail:   "A component script must declare both an init and an update function.",
		DocURL:   "https://glyph.dev/docs/errors/G209",
	},
	"G210": {
		Category: CategoryType,
		Message:  "Wrong number of arguments",
		Detail:   "A call or constructor application supplies a different number of arguments than the declaration accepts.",
		DocURL:   "https://glyph.dev/docs/errors/G210",
	},

	// ============================================
	// Codegen Errors (G300-G399)
	// ============================================

	"G300": {
		Category: CategoryCodegen,
		Message:  "Unsupported construct",
		Detail:   "The code generator has no lowering for this IR shape. This is a compiler defect, not a source error: please report it.",
		DocURL:   "https://glyph.dev/docs/errors/G300",
	},
	"G301": {
		Category: CategoryCodegen,
		Message:  "Internal consistency failure",
		Detail:   "The IR builder received a checked AST that violates an invariant the type checker should have established. This is a compiler defect: please report it.",
		DocURL:   "https://glyph.dev/docs/errors/G301",
	},

	// ============================================
	// Config Errors (G400-G499)
	// ============================================

	"G400": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No glyph.json was found in the project directory.",
		DocURL:   "https://glyph.dev/docs/errors/G400",
	},
	"G401": {
		Category: CategoryConfig,
		Message:  "Invalid glyph.json",
		Detail:   "The project configuration file could not be read or parsed.",
		DocURL:   "https://glyph.dev/docs/errors/G401",
	},

	// ============================================
	// Build Errors (G500-G599)
	// ============================================

	"G500": {
		Category: CategoryBuild,
		Message:  "Build failed",
		Detail:   "The build could not run: the component directory has no .glyph files, a source file could not be read, or the compiler failed internally.",
		DocURL:   "https://glyph.dev/docs/errors/G500",
	},
	"G501": {
		Category: CategoryBuild,
		Message:  "Build completed with errors",
		Detail:   "One or more components failed to compile. See the collected diagnostics.",
		DocURL:   "https://glyph.dev/docs/errors/G501",
	},
	"G502": {
		Category: CategoryBuild,
		Message:  "Output write failed",
		Detail:   "A compiled artifact or bundle could not be written to the output directory.",
		DocURL:   "https://glyph.dev/docs/errors/G502",
	},

	// ============================================
	// Deploy Errors (G600-G699)
	// ============================================

	"G600": {
		Category: CategoryDeploy,
		Message:  "Deploy failed",
		Detail:   "The build output could not be uploaded to the configured bucket.",
		DocURL:   "https://glyph.dev/docs/errors/G600",
	},
	"G601": {
		Category: CategoryDeploy,
		Message:  "Deploy not configured",
		Detail:   "glyph.json has no deploy.bucket entry.",
		DocURL:   "https://glyph.dev/docs/errors/G601",
	},
}

// Register adds a custom error template. Used by tests and host adapters.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template registered for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
