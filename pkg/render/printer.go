// Package render 命令行输出
//
// 同一份数据可以按表格、JSON 或 YAML 输出。表格由各个视图函数自己组织列，
// JSON/YAML 直接序列化数据本身，字段名与接口返回的一致。
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// 输出格式
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats 支持的输出格式
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// Printer 输出器
type Printer struct {
	out    io.Writer
	format string
}

// NewPrinter 创建输出器，format 为空时使用表格
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	switch format {
	case "":
		format = FormatTable
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("不支持的输出格式: %s", format)
	}
	return &Printer{out: out, format: format}, nil
}

// Format 输出格式
func (p *Printer) Format() string {
	return p.format
}

// Writer 输出目标
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Print 输出数据，表格格式时调用 table 组织内容
func (p *Printer) Print(v any, table func(t *Table)) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(v)
	case FormatYAML:
		return p.printYAML(v)
	default:
		t := newTable(p.out)
		table(t)
		return t.Flush()
	}
}

// Message 输出一行提示，JSON/YAML 格式时输出 {"message": ...}
func (p *Printer) Message(format string, args ...any) error {
	message := fmt.Sprintf(format, args...)
	if p.format == FormatTable {
		_, err := fmt.Fprintln(p.out, message)
		return err
	}
	return p.Print(map[string]string{"message": message}, nil)
}

func (p *Printer) printJSON(v any) error {
	encoder := json.NewEncoder(p.out)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

// printYAML 先转成JSON再解析成yaml节点，字段名和顺序与JSON保持一致
func (p *Printer) printYAML(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	resetStyle(&node)

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&node); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err = p.out.Write(buf.Bytes())
	return err
}

// resetStyle 去掉从JSON带来的流式和引号风格
func resetStyle(node *yaml.Node) {
	node.Style = 0
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" && needsQuote(node.Value) {
		node.Style = yaml.DoubleQuotedStyle
	}
	for _, child := range node.Content {
		resetStyle(child)
	}
}

// needsQuote 去掉引号后会被解析成其他类型的字符串
func needsQuote(value string) bool {
	var probe any
	if err := yaml.Unmarshal([]byte(value), &probe); err != nil {
		return true
	}
	_, isString := probe.(string)
	return !isString
}

// Table 表格
type Table struct {
	w *tabwriter.Writer
}

func newTable(out io.Writer) *Table {
	return &Table{w: tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)}
}

// Header 表头
func (t *Table) Header(columns ...string) {
	values := make([]any, len(columns))
	for i, c := range columns {
		values[i] = c
	}
	t.Row(values...)
}

// Row 一行数据
func (t *Table) Row(values ...any) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(t.w, "\t")
		}
		fmt.Fprint(t.w, v)
	}
	fmt.Fprintln(t.w)
}

// Field 键值对形式的一行
func (t *Table) Field(name string, value any) {
	fmt.Fprintf(t.w, "%s:\t%v\n", name, value)
}

// Line 原样输出一行，不参与对齐
func (t *Table) Line(format string, args ...any) {
	// 先把已有的内容对齐输出
	_ = t.w.Flush()
	fmt.Fprintf(t.w, format+"\n", args...)
	_ = t.w.Flush()
}

// Flush 输出
func (t *Table) Flush() error {
	return t.w.Flush()
}
