package config

// WorldFileExt is the extension of fixture world descriptions.
const WorldFileExt = ".yaml"

// ArchiveFileExt is the extension of golden resolution archives.
const ArchiveFileExt = ".txtar"

// DefaultSettingsFile is looked up in the working directory when --config is not given.
const DefaultSettingsFile = "calltower.yaml"

// Built-in type names
const (
	AnyTypeName     = "Any"
	NothingTypeName = "Nothing"
	UnitTypeName    = "Unit"
	IntTypeName     = "Int"
	LongTypeName    = "Long"
	DoubleTypeName  = "Double"
	StringTypeName  = "String"
	BoolTypeName    = "Boolean"
)

// InvokeOperatorName is the member a value of function type is called through.
const InvokeOperatorName = "invoke"

// ConstructorName is the display name given to class constructors.
const ConstructorName = "<init>"

// ThisLabelPrefix prefixes labels of implicit receivers (this@Foo).
const ThisLabelPrefix = "this@"

// QualifierSeparator joins the parts of a dotted qualifier.
const QualifierSeparator = "."

// Metric namespace shared by all collectors.
const MetricsNamespace = "calltower"

// TracerName identifies spans created by the resolver.
const TracerName = "calltower/resolve"

// DefaultMaxDepth is the default recursion limit for nested resolution.
const DefaultMaxDepth = 64
