package metadata

// Core vocabulary terms.
const (
	TermDescription     = "Org.OData.Core.V1.Description"
	TermLongDescription = "Org.OData.Core.V1.LongDescription"
)

// Capabilities vocabulary terms.
const (
	TermTopSupported       = "Org.OData.Capabilities.V1.TopSupported"
	TermInsertRestrictions = "Org.OData.Capabilities.V1.InsertRestrictions"
	TermUpdateRestrictions = "Org.OData.Capabilities.V1.UpdateRestrictions"
	TermDeleteRestrictions = "Org.OData.Capabilities.V1.DeleteRestrictions"
)

// Record properties of the restriction terms.
const (
	PropertyInsertable = "Insertable"
	PropertyUpdatable  = "Updatable"
	PropertyDeletable  = "Deletable"
)

// SDK generation capability terms applied to entity sets.
const (
	TermQueryable  = "Com.Microsoft.Graph.Queryable"
	TermWritable   = "Com.Microsoft.Graph.Writable"
	TermDeletable  = "Com.Microsoft.Graph.Deletable"
	TermEnumerable = "Com.Microsoft.Graph.Enumerable"
)
