// Package openapi builds entry templates from OpenAPI component schemas so
// a group of API objects can be edited without hand written markup. The
// generated names carry placeholder ordinals; the formset renumbers them on
// insertion.
package openapi
