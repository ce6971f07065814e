package compiler

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

func makeSet(list string) mapset.Set[string] {
	return mapset.NewSet(strings.Split(list, ",")...)
}

var (
	htmlTags = makeSet(
		"html,body,base,head,link,meta,style,title," +
			"address,article,aside,footer,header,h1,h2,h3,h4,h5,h6,hgroup,nav,section," +
			"div,dd,dl,dt,figcaption,figure,picture,hr,img,li,main,ol,p,pre,ul," +
			"a,b,abbr,bdi,bdo,br,cite,code,data,dfn,em,i,kbd,mark,q,rp,rt,rtc,ruby," +
			"s,samp,small,span,strong,sub,sup,time,u,var,wbr,area,audio,map,track,video," +
			"embed,object,param,source,canvas,script,noscript,del,ins," +
			"caption,col,colgroup,table,thead,tbody,td,th,tr," +
			"button,datalist,fieldset,form,input,label,legend,meter,optgroup,option," +
			"output,progress,select,textarea," +
			"details,dialog,menu,menuitem,summary," +
			"content,element,shadow,template,blockquote,iframe,tfoot",
	)

	svgTags = makeSet(
		"svg,animate,circle,clippath,cursor,defs,desc,ellipse,filter,font-face," +
			"foreignObject,g,glyph,image,line,marker,mask,missing-glyph,path,pattern," +
			"polygon,polyline,rect,switch,symbol,text,textpath,tspan,use,view",
	)

	// placeholders resolved at render time, never static
	builtInTags = makeSet("slot,component")
)

func IsHTMLTag(tag string) bool {
	return htmlTags.Contains(tag)
}

func IsSVGTag(tag string) bool {
	return svgTags.Contains(tag)
}

// IsReservedTag is the web platform predicate: any HTML or SVG element.
func IsReservedTag(tag string) bool {
	return IsHTMLTag(tag) || IsSVGTag(tag)
}

func isBuiltInTag(tag string) bool {
	return builtInTags.Contains(tag)
}

// ReservedTags builds a predicate accepting the given tags on top of base,
// which may be nil.
func ReservedTags(base func(string) bool, extra ...string) func(string) bool {
	set := mapset.NewSet(extra...)
	return func(tag string) bool {
		if set.Contains(tag) {
			return true
		}
		return base != nil && base(tag)
	}
}
